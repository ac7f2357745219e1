package pitch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/utsu/util"
)

// Alphabet maps 6-bit values to the characters resamplers expect.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// Encode12Bit writes a 12-bit two's complement value (-2048 to 2047) as two
// characters. Negative values wrap by 4096 and anything left outside
// [0, 4095] is clamped.
func Encode12Bit(value int) string {
	if value < 0 {
		value += 4096
	}
	value = util.Clamp(value, 0, 4095)

	var sb strings.Builder
	for _, sixBits := range [2]int{value / 64, value % 64} {
		if sixBits < 0 || sixBits >= len(Alphabet) {
			return "AA"
		}
		sb.WriteByte(Alphabet[sixBits])
	}
	return sb.String()
}

// Decode12Bit reads a two character token back into a signed value.
func Decode12Bit(token string) (int, error) {
	if len(token) != 2 {
		return 0, fmt.Errorf("pitch token %q must be 2 characters", token)
	}
	hi := strings.IndexByte(Alphabet, token[0])
	lo := strings.IndexByte(Alphabet, token[1])
	if hi < 0 || lo < 0 {
		return 0, fmt.Errorf("pitch token %q has characters outside the alphabet", token)
	}
	value := hi*64 + lo
	if value >= 2048 {
		value -= 4096
	}
	return value, nil
}

// DecodePitchString expands a rendered pitch string into one cent offset
// per pitch step, undoing the #n# run-length markers.
func DecodePitchString(s string) ([]int, error) {
	var res []int
	for i := 0; i < len(s); {
		if s[i] == '#' {
			end := strings.IndexByte(s[i+1:], '#')
			if end < 0 {
				return nil, fmt.Errorf("unterminated run marker at %d", i)
			}
			n, err := strconv.Atoi(s[i+1 : i+1+end])
			if err != nil {
				return nil, fmt.Errorf("bad run marker at %d: %w", i, err)
			}
			if len(res) == 0 {
				return nil, fmt.Errorf("run marker at %d has nothing to repeat", i)
			}
			last := res[len(res)-1]
			for j := 0; j < n; j++ {
				res = append(res, last)
			}
			i += end + 2
			continue
		}
		if i+2 > len(s) {
			return nil, fmt.Errorf("truncated pitch token at %d", i)
		}
		v, err := Decode12Bit(s[i : i+2])
		if err != nil {
			return nil, err
		}
		res = append(res, v)
		i += 2
	}
	return res, nil
}
