package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/content-services/modulemd-backend/pkg/api"
	"github.com/content-services/modulemd-backend/pkg/validation"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

// StdinFile names standard input on the command line.
const StdinFile = "-"

func ValidateAction(c *cli.Context) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return cli.Exit("validate requires at least one FILE", 2)
	}
	strict := c.Bool("strict")
	validator := validation.NewValidator(nil, nil)

	failed := 0
	for _, file := range files {
		body, err := readInput(c, file)
		if err != nil {
			fmt.Fprintf(c.App.Writer, "%s: FAILED: %v\n", file, err)
			failed++
			continue
		}
		response, err := validator.Validate(c.Context, body, strict)
		if err != nil {
			fmt.Fprintf(c.App.Writer, "%s: FAILED: %v\n", file, err)
			failed++
			continue
		}
		for _, doc := range response.Documents {
			fmt.Fprintln(c.App.Writer, describeResult(file, doc))
		}
		failed += response.Failed()
	}
	if failed > 0 {
		return cli.Exit(fmt.Sprintf("%d document(s) failed to validate", failed), 1)
	}
	return nil
}

func describeResult(file string, doc api.DocumentResult) string {
	docType := doc.Document
	if docType == "" {
		docType = "unknown"
	}
	line := fmt.Sprintf("%s: %s v%d", file, docType, doc.Version)
	if doc.Stream != nil && doc.Stream.NSVCA != "" {
		line += " " + doc.Stream.NSVCA
	}
	if doc.Valid {
		return line + " OK"
	}
	if doc.Line > 0 {
		line += fmt.Sprintf(" (line %d)", doc.Line)
	}
	return line + " FAILED: " + doc.Error
}

func readInput(c *cli.Context, file string) ([]byte, error) {
	if file == StdinFile {
		body, err := io.ReadAll(c.App.Reader)
		return body, errors.Wrap(err, "could not read standard input")
	}
	body, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", file)
	}
	return body, nil
}
