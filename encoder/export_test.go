package encoder

// Exported for testing purposes.

type (
	FileV1        = fileV1
	FunctionV1    = functionV1
	InstructionV1 = instructionV1
	ConstantV1    = constantV1
)

const (
	ConstNumber   = constNumber
	ConstString   = constString
	ConstFunction = constFunction
)

func MarshalFile(f *fileV1) ([]byte, error) {
	return encMode.Marshal(f)
}
