package core

import "fmt"

// NumArms is the fixed number of arms. All arm-indexed state is a [NumArms] array.
const NumArms = 2

// Arm is one of the two selectable actions
type Arm int

const (
	ArmZero Arm = 0
	ArmOne  Arm = 1
)

// Valid reports whether the arm is 0 or 1
func (a Arm) Valid() bool {
	return a == ArmZero || a == ArmOne
}

// Other returns the mirrored arm
func (a Arm) Other() Arm {
	return 1 - a
}

// Validate returns ErrInvalidArm for anything outside {0, 1}
func (a Arm) Validate() error {
	if !a.Valid() {
		return NewInvalidArmError(int(a))
	}
	return nil
}

func (a Arm) String() string {
	return fmt.Sprintf("arm%d", int(a))
}

// ParseArm converts a caller-supplied index into an Arm
func ParseArm(i int) (Arm, error) {
	a := Arm(i)
	if err := a.Validate(); err != nil {
		return 0, err
	}
	return a, nil
}
