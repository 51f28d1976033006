package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	moltdaerrors "github.com/matzehuels/moltda/pkg/errors"
)

// Process exit statuses.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitUsage       = 2 // bad flags, input or settings
	ExitEngine      = 3 // the homology engine failed
	ExitInterrupted = 130
)

// ExitCode maps an error returned by the root command to an exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupted
	case moltdaerrors.Is(err, moltdaerrors.ErrCodeEngineFailed):
		return ExitEngine
	case moltdaerrors.IsClientError(err):
		return ExitUsage
	}
	return ExitFailure
}

// PrintError writes err to w as a single styled line. Coded errors show
// their message, cause and code; anything else is printed as is.
func PrintError(w io.Writer, err error) {
	msg := err.Error()
	var e *moltdaerrors.Error
	if errors.As(err, &e) {
		msg = e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		msg += " " + StyleDim.Render("("+string(e.Code)+")")
	}
	fmt.Fprintln(w, styleFail.Render("✗")+" "+msg)
}
