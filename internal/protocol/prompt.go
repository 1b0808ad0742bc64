package protocol

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"camcli/pkg/contracts/domain"
)

// ConsolePrompt returns a Prompt that asks for a protocol code on w and
// reads the answer from r. Codes are the short forms used in lab
// worksheets (F, FC, CL), case-insensitive; unrecognized answers re-ask
// until the input is exhausted.
func ConsolePrompt(r io.Reader, w io.Writer) Prompt {
	scanner := bufio.NewScanner(r)
	return func(ctx context.Context, filename string) (domain.Protocol, error) {
		for {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			fmt.Fprintf(w, "Cannot identify the protocol for %s.\nEnter F (formation), FC (formation + capacity check) or CL (cycle life): ", filename)

			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return "", err
				}
				return "", io.ErrUnexpectedEOF
			}

			code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			proto, err := domain.ParseProtocol(code)
			if err != nil {
				fmt.Fprintf(w, "Unrecognized code %q, expected F, FC, or CL.\n", code)
				continue
			}
			return proto, nil
		}
	}
}
