package chip8

import (
	"errors"
	"fmt"
)

// ErrUnimplementedOpcode matches any *UnimplementedOpcodeError via errors.Is.
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")

// UnimplementedOpcodeError reports an instruction word that decodes to no
// known operation.
type UnimplementedOpcodeError struct {
	Opcode uint16
}

func (e *UnimplementedOpcodeError) Error() string {
	return fmt.Sprintf("unimplemented opcode 0x%04X", e.Opcode)
}

func (e *UnimplementedOpcodeError) Is(target error) bool {
	return target == ErrUnimplementedOpcode
}
