// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// lox-ls is a language server which reports compile errors of lox scripts
// as diagnostics.
package main

import (
	"flag"
	"fmt"
	"os"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/ozanh/lox"
	"github.com/ozanh/lox/config"
	"github.com/ozanh/lox/token"

	_ "github.com/tliron/commonlog/simple"
)

const lsName = "lox-ls"

var version = "0.1.0"

var log = commonlog.GetLogger(lsName)

type server struct {
	mu   sync.Mutex
	docs map[protocol.DocumentUri]string

	handler protocol.Handler
}

func newServer() *server {
	s := &server{
		docs: make(map[protocol.DocumentUri]string),
	}
	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:    s.textDocumentDidOpen,
		TextDocumentDidChange:  s.textDocumentDidChange,
		TextDocumentDidClose:   s.textDocumentDidClose,
		TextDocumentCompletion: s.textDocumentCompletion,
	}
	return s
}

func (s *server) initialize(
	ctx *glsp.Context,
	params *protocol.InitializeParams,
) (any, error) {
	log.Info("initializing")

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: &[]bool{true}[0],
		Change:    &syncKind,
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &version,
		},
	}, nil
}

func (s *server) initialized(
	ctx *glsp.Context,
	params *protocol.InitializedParams,
) error {
	return nil
}

func (s *server) shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *server) setTrace(
	ctx *glsp.Context,
	params *protocol.SetTraceParams,
) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *server) textDocumentDidOpen(
	ctx *glsp.Context,
	params *protocol.DidOpenTextDocumentParams,
) error {
	uri := params.TextDocument.URI
	text := params.TextDocument.Text

	s.mu.Lock()
	s.docs[uri] = text
	s.mu.Unlock()

	s.publish(ctx, uri, diagnostics(text))
	return nil
}

func (s *server) textDocumentDidChange(
	ctx *glsp.Context,
	params *protocol.DidChangeTextDocumentParams,
) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	// with full sync the last change holds the whole text
	last := params.ContentChanges[len(params.ContentChanges)-1]
	whole, ok := last.(protocol.TextDocumentContentChangeEventWhole)
	if !ok {
		return fmt.Errorf("%s: incremental change is not supported", lsName)
	}
	uri := params.TextDocument.URI

	s.mu.Lock()
	s.docs[uri] = whole.Text
	s.mu.Unlock()

	s.publish(ctx, uri, diagnostics(whole.Text))
	return nil
}

func (s *server) textDocumentDidClose(
	ctx *glsp.Context,
	params *protocol.DidCloseTextDocumentParams,
) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	s.publish(ctx, uri, []protocol.Diagnostic{})
	return nil
}

func (s *server) textDocumentCompletion(
	ctx *glsp.Context,
	params *protocol.CompletionParams,
) (any, error) {
	s.mu.Lock()
	_, ok := s.docs[params.TextDocument.URI]
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return keywordCompletions(), nil
}

func (s *server) publish(
	ctx *glsp.Context,
	uri protocol.DocumentUri,
	diags []protocol.Diagnostic,
) {
	log.Debugf("%s: %d diagnostics", uri, len(diags))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics,
		protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: diags,
		})
}

// diagnostics compiles text and returns one error diagnostic per compile
// error, spanning the whole line the error is reported on.
func diagnostics(text string) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	_, err := lox.Compile([]byte(text), lox.DefaultCompilerOptions)
	if err == nil {
		return out
	}
	list, ok := err.(lox.ErrorList)
	if !ok {
		return out
	}
	lines := lineLengths(text)
	severity := protocol.DiagnosticSeverityError
	source := lsName
	for _, e := range list {
		line := e.Line - 1
		if line < 0 {
			line = 0
		}
		var end int
		if line < len(lines) {
			end = lines[line]
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: protocol.UInteger(line)},
				End: protocol.Position{
					Line:      protocol.UInteger(line),
					Character: protocol.UInteger(end),
				},
			},
			Severity: &severity,
			Source:   &source,
			Message:  e.Error(),
		})
	}
	return out
}

// lineLengths returns the length of each line of text in UTF-16 code units.
func lineLengths(text string) []int {
	lengths := []int{0}
	for _, r := range text {
		if r == '\n' {
			lengths = append(lengths, 0)
			continue
		}
		n := 1
		if r >= 0x10000 {
			n = 2
		}
		lengths[len(lengths)-1] += n
	}
	return lengths
}

func keywordCompletions() []protocol.CompletionItem {
	kind := protocol.CompletionItemKindKeyword
	detail := "keyword"
	keywords := token.Keywords()
	items := make([]protocol.CompletionItem, 0, len(keywords))
	for _, kw := range keywords {
		items = append(items, protocol.CompletionItem{
			Label:  kw,
			Kind:   &kind,
			Detail: &detail,
		})
	}
	return items
}

func main() {
	var configDir string
	flag.StringVar(&configDir, "config", ".",
		"Directory to search "+config.FileName+" from")
	flag.Parse()

	cfg, err := config.FindAndLoad(configDir)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(64)
	}
	if cfg == nil {
		cfg = config.Default()
	}
	// stdout carries the protocol, logs go to the configured file or stderr
	commonlog.Configure(cfg.Log.Verbosity, cfg.LogPath())

	s := newServer()
	if err := glspserver.NewServer(&s.handler, lsName, false).RunStdio(); err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}
}
