package importers_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ozanh/lox"
	"github.com/ozanh/lox/importers"
)

func TestFileImporter(t *testing.T) {
	files := map[string]string{
		"./main.lox":        "print \"main\";\n",
		"./foo/lib.lox":     "fun lib() { return 1; }\n",
		"./foo/bar/sub.lox": "var sub = 2;\n",
	}

	t.Run("default", func(t *testing.T) {
		tempDir := t.TempDir()
		createScripts(t, tempDir, files)

		imp := &importers.FileImporter{WorkDir: tempDir}
		abs, err := filepath.Abs(tempDir)
		require.NoError(t, err)
		require.Equal(t, filepath.Join(abs, "foo", "lib.lox"), imp.Name("foo/lib.lox"))
		require.Equal(t, "", imp.Name(""))

		for name, content := range files {
			data, err := imp.Import(name)
			require.NoError(t, err)
			require.Equal(t, content, string(data))
			_, err = lox.Compile(data, lox.DefaultCompilerOptions)
			require.NoError(t, err)
		}

		_, err = imp.Import("")
		require.Error(t, err)
		_, err = imp.Import("missing.lox")
		require.True(t, os.IsNotExist(err))

		fork := imp.Fork("foo/lib.lox")
		data, err := fork.Import("bar/sub.lox")
		require.NoError(t, err)
		require.Equal(t, files["./foo/bar/sub.lox"], string(data))
	})

	t.Run("shebang", func(t *testing.T) {
		const shebangline = "#!/usr/bin/env lox\n"

		mfiles := make(map[string]string)
		for k, v := range files {
			mfiles[k] = shebangline + v
		}
		tempDir := t.TempDir()
		createScripts(t, tempDir, mfiles)

		imp := &importers.FileImporter{
			WorkDir:    tempDir,
			FileReader: importers.ShebangReadFile,
		}
		for name := range mfiles {
			data, err := imp.Import(name)
			require.NoError(t, err)
			require.Equal(t, "//", string(data[:2]))
			fn, err := lox.Compile(data, lox.DefaultCompilerOptions)
			require.NoError(t, err)
			// the shebang line is a comment, code starts on line 2
			require.Equal(t, 2, fn.Chunk.Lines[0])
		}

		script := []byte(shebangline + "print 1;")
		importers.Shebang2Slashes(script)
		_, err := lox.Compile(script, lox.DefaultCompilerOptions)
		require.NoError(t, err)
	})

	t.Run("no shebang", func(t *testing.T) {
		for _, s := range []string{"", "#", "# x", "/!"} {
			b := []byte(s)
			importers.Shebang2Slashes(b)
			require.Equal(t, s, string(b))
		}
	})
}

func createScripts(t *testing.T, baseDir string, files map[string]string) {
	for file, data := range files {
		path := filepath.Join(baseDir, file)
		err := os.MkdirAll(filepath.Dir(path), 0755)
		require.NoError(t, err)
		err = os.WriteFile(path, []byte(data), 0644)
		require.NoError(t, err)
	}
}
