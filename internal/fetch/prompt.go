package fetch

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ConsoleConfirm asks on out whether an existing folder should be downloaded
// again and reads the answer from in. Only "n" (any case) declines; every
// other answer, including an empty line, proceeds.
func ConsoleConfirm(in io.Reader, out io.Writer) ConfirmFunc {
	r := bufio.NewReader(in)
	return func(folder string) (bool, error) {
		fmt.Fprintf(out, "The folder %s already exists. Do you want to download it again? (y/n) ", folder)
		line, err := r.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return false, fmt.Errorf("reading answer: %w", err)
		}
		return !strings.EqualFold(strings.TrimSpace(line), "n"), nil
	}
}
