// Package tonaddr приводит адреса TON к единому каноничному виду.
// У одного адреса есть несколько текстовых представлений (raw "wc:hex"
// и user-friendly base64), поэтому перед сравнением обе стороны
// нормализуются к raw-форме в нижнем регистре.
package tonaddr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xssnick/tonutils-go/address"
)

// ErrEmptyAddress возвращается для пустой строки адреса.
var ErrEmptyAddress = errors.New("empty address")

// Normalize возвращает каноничную raw-форму адреса "wc:hex" в нижнем
// регистре. Принимает как user-friendly (base64), так и raw запись.
func Normalize(raw string) (string, error) {
	const op = "tonaddr.Normalize"

	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyAddress)
	}

	addr, err := address.ParseAddr(s)
	if err != nil {
		addr, err = address.ParseRawAddr(s)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%d:%x", addr.Workchain(), addr.Data()), nil
}
