package commands

import (
	"fmt"
	"io"

	ticketDomain "github.com/allisson/ticketsentry/internal/ticket/domain"
	"github.com/allisson/ticketsentry/internal/ticket/http/dto"
)

// RunParse describes each code without touching any store.
func RunParse(writer io.Writer, codes []string, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	if format == FormatJSON {
		out := make([]dto.ParseResponse, 0, len(codes))
		for _, code := range codes {
			out = append(out, dto.ParseResponse{Description: ticketDomain.Describe(code)})
		}
		return writeJSON(writer, out)
	}

	for _, code := range codes {
		_, _ = fmt.Fprintln(writer, ticketDomain.Describe(code))
	}
	return nil
}
