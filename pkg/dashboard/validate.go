package dashboard

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxTokenID is the highest token id of the collection.
const MaxTokenID = 9999

var (
	ErrInvalidTokenID  = errors.New("invalid token id")
	ErrInvalidAddress  = errors.New("invalid wallet address")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrUnknownView     = errors.New("unknown view")
)

// ValidationError reports rejected user input. Message is localized and safe
// to show inline.
type ValidationError struct {
	Input   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Err.Error() + ": " + strconv.Quote(e.Input)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidateTokenID parses a token id using the default locale for the error message.
func ValidateTokenID(raw string) (int, error) {
	return validateTokenID(raw, MessagesFor(DefaultLocale))
}

// validateTokenID accepts only base-10 digits. Surrounding whitespace is
// rejected; input layers trim before calling.
func validateTokenID(raw string, msgs Messages) (int, error) {
	invalid := &ValidationError{Input: raw, Message: msgs.InvalidTokenID, Err: ErrInvalidTokenID}
	// Max 9999 is four digits; the length check also keeps Atoi from overflowing.
	if raw == "" || len(raw) > 4 {
		return 0, invalid
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, invalid
		}
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id > MaxTokenID {
		return 0, invalid
	}
	return id, nil
}

// ValidateAddress checks a wallet address and returns its checksummed form.
func ValidateAddress(raw string) (string, error) {
	return validateAddress(raw, MessagesFor(DefaultLocale))
}

func validateAddress(raw string, msgs Messages) (string, error) {
	s := strings.TrimSpace(raw)
	if !common.IsHexAddress(s) {
		return "", &ValidationError{Input: raw, Message: msgs.InvalidAddress, Err: ErrInvalidAddress}
	}
	return common.HexToAddress(s).Hex(), nil
}
