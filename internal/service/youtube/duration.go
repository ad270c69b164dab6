package youtube

import (
	"strconv"
	"strings"
)

// parseISO8601Duration converts the API's ISO 8601 duration strings (PT1M30S,
// PT2H, P1DT3H) to seconds. Returns false for anything it cannot parse.
func parseISO8601Duration(raw string) (int64, bool) {
	s := strings.TrimPrefix(raw, "P")
	if s == raw || s == "" {
		return 0, false
	}

	var total int64
	inTime := false
	components := 0
	num := strings.Builder{}

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			num.WriteRune(r)
		case r == 'T':
			inTime = true
		default:
			if num.Len() == 0 {
				return 0, false
			}
			value, err := strconv.ParseInt(num.String(), 10, 64)
			if err != nil {
				return 0, false
			}
			num.Reset()

			switch r {
			case 'D':
				total += value * 86400
			case 'H':
				if !inTime {
					return 0, false
				}
				total += value * 3600
			case 'M':
				if !inTime {
					// calendar months are not expected for video durations
					return 0, false
				}
				total += value * 60
			case 'S':
				if !inTime {
					return 0, false
				}
				total += value
			default:
				return 0, false
			}
			components++
		}
	}

	if num.Len() > 0 || components == 0 {
		return 0, false
	}

	return total, true
}
