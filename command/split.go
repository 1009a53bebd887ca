package command

import (
	"fmt"

	"github.com/google/shlex"
)

// SplitLine tokenises a command line using shell quoting rules, so
// `set "Two Words" 5` yields three arguments.
func SplitLine(line string) ([]string, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to split command line: %w", err)
	}
	return args, nil
}
