package cpu

import (
	"errors"

	"github.com/ezrec/sap1/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalted    = errors.New(f("halted"))
	ErrOutput    = errors.New(f("output"))
	ErrImageSize = errors.New(f("image larger than memory"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOrgSyntax          = errors.New(f(".org syntax"))
	ErrByteSyntax         = errors.New(f(".byte syntax"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
	ErrImageFull          = errors.New(f("program exceeds memory"))
)

type ErrSubtractMode string

func (err ErrSubtractMode) Error() string {
	return f("'%v' is not a subtract mode", string(err))
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrOperandRange indicates a value too large for its field.
type ErrOperandRange struct {
	Value uint32
	Limit uint32
}

func (err *ErrOperandRange) Error() string {
	return f("value %d exceeds %d", err.Value, err.Limit)
}

// ErrImageOverlap indicates two lines assembling to the same address.
type ErrImageOverlap struct {
	Ip     int
	LineNo int
}

func (err *ErrImageOverlap) Error() string {
	return f("address %d already assembled at line %d", err.Ip, err.LineNo)
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
