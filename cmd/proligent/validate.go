package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	perrors "github.com/jacoelho/proligent/errors"
	"github.com/jacoelho/proligent/validator"
)

// fileResult is one line of validate --json output.
type fileResult struct {
	File string `json:"file"`
	validator.Result
}

func (a *app) validateCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate <file.xml>...",
		Short: "Validate payloads against the Datawarehouse schema",
		Args:  minArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := a.validator()
			if err != nil {
				return err
			}
			if asJSON {
				return a.validateJSON(v, args)
			}
			return a.validateText(v, args)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON result per file")
	return cmd
}

func (a *app) validateText(v *validator.Validator, files []string) error {
	failed := false
	for _, file := range files {
		err := v.Validate(file)
		if err == nil {
			if err := writef(a.stdout, "%s validates\n", file); err != nil {
				return err
			}
			continue
		}
		failed = true
		if violation, ok := perrors.AsValidation(err); ok {
			if err := writeln(a.stderr, violation.Error()); err != nil {
				return err
			}
			if err := writef(a.stderr, "%s fails to validate\n", file); err != nil {
				return err
			}
			continue
		}
		if err := writef(a.stderr, "error validating: %v\n", err); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func (a *app) validateJSON(v *validator.Validator, files []string) error {
	enc := json.NewEncoder(a.stdout)
	failed := false
	for _, file := range files {
		res := v.ValidateSafe(file)
		if !res.IsValid {
			failed = true
		}
		if err := enc.Encode(fileResult{File: file, Result: res}); err != nil {
			return err
		}
	}
	if failed {
		return errFailed
	}
	return nil
}
