package design

import "errors"

// Errors reported while building or committing a board definition. Returned
// errors wrap these with context; test them with errors.Is.
var (
	ErrEmptyBoardName     = errors.New("design: board name is empty")
	ErrEmptyReference     = errors.New("design: component reference is empty")
	ErrInvalidValue       = errors.New("design: invalid component value")
	ErrInvalidRotation    = errors.New("design: rotation must be 0, 90, 180 or 270")
	ErrUnknownPackage     = errors.New("design: unknown package")
	ErrOutOfRangePin      = errors.New("design: pin number out of range")
	ErrEmptyNetName       = errors.New("design: net name is empty")
	ErrDuplicateNetName   = errors.New("design: duplicate net name")
	ErrDuplicateReference = errors.New("design: duplicate reference")
	ErrDanglingNetMember  = errors.New("design: net member refers to a component not passed to create")
	ErrPinConflict        = errors.New("design: pin belongs to more than one net")
	ErrSingleMemberNet    = errors.New("design: net has a single member")
	ErrAlreadyCreated     = errors.New("design: board already created")
	ErrNotCreated         = errors.New("design: board has not been created")
)
