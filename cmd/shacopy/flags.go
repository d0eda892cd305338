package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bamsammich/shacopy/internal/config"
	"github.com/bamsammich/shacopy/internal/overwrite"
)

// policyFlag is a pflag.Value that rejects unknown overwrite policies at
// parse time, so a typo never reaches the copy engine.
type policyFlag struct {
	policy overwrite.Policy
}

func (f *policyFlag) String() string { return f.policy.String() }
func (*policyFlag) Type() string     { return "policy" }

func (f *policyFlag) Set(val string) error {
	p, err := overwrite.Parse(val)
	if err != nil {
		return err
	}
	f.policy = p
	return nil
}

// sizeFlag is a pflag.Value holding a human-readable size such as 128K.
type sizeFlag struct {
	text  string
	bytes int64
}

func newSizeFlag(text string) *sizeFlag {
	f := &sizeFlag{}
	if err := f.Set(text); err != nil {
		panic(fmt.Sprintf("bad default size %q: %v", text, err))
	}
	return f
}

func (f *sizeFlag) String() string { return f.text }
func (*sizeFlag) Type() string     { return "size" }

func (f *sizeFlag) Set(val string) error {
	if val == "" {
		f.text, f.bytes = "", 0
		return nil
	}
	n, err := config.ParseSize(val)
	if err != nil {
		return err
	}
	f.text, f.bytes = val, n
	return nil
}

// blockSize returns the flag as a positive int block size.
func (f *sizeFlag) blockSize() (int, error) {
	const maxBlock = 1 << 30
	if f.bytes <= 0 || f.bytes > maxBlock {
		return 0, fmt.Errorf("block size %q must be between 1 byte and 1G", f.text)
	}
	return int(f.bytes), nil
}

func policyUsage() string {
	return "overwrite policy for existing files (" + strings.Join(overwrite.Names(), ", ") + ")"
}

// applyString sets flag name from a config value unless it was given on
// the command line.
func applyString(cmd *cobra.Command, name string, val *string) error {
	if val == nil || cmd.Flags().Changed(name) {
		return nil
	}
	if err := cmd.Flags().Set(name, *val); err != nil {
		return fmt.Errorf("config %s: %w", name, err)
	}
	return nil
}

func applyInt(cmd *cobra.Command, name string, dst, val *int) {
	if val != nil && !cmd.Flags().Changed(name) {
		*dst = *val
	}
}

func applyBool(cmd *cobra.Command, name string, dst, val *bool) {
	if val != nil && !cmd.Flags().Changed(name) {
		*dst = *val
	}
}
