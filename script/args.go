package script

import (
	"fmt"
	"strconv"

	"github.com/ByLCY/vellum/binding"
)

// args gives typed access to a command's arguments.
type args struct {
	cmd  *Command
	data any
}

func (a args) len() int { return len(a.cmd.Args) }

func (a args) want(min, max int) error {
	n := a.len()
	if n < min || (max >= 0 && n > max) {
		if min == max {
			return fmt.Errorf("需要 %d 个参数，得到 %d 个", min, n)
		}
		return fmt.Errorf("参数个数 %d 不在 [%d, %d] 范围内", n, min, max)
	}
	return nil
}

// str returns argument i with ${...} placeholders bound from data.
func (a args) str(i int) string {
	if i >= a.len() {
		return ""
	}
	return binding.Interpolate(a.cmd.Args[i].Value, a.data)
}

func (a args) float(i int) (float64, error) {
	s := a.str(i)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("第 %d 个参数 %q 不是数字", i+1, s)
	}
	return v, nil
}

func (a args) int(i int) (int, error) {
	s := a.str(i)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("第 %d 个参数 %q 不是整数", i+1, s)
	}
	return v, nil
}

func (a args) floats(from, n int) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		v, err := a.float(from + i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
