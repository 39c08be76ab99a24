package wire

// Status is the status code of a Light Lightness Range Status.
type Status uint8

const (
	StatusSuccess           Status = 0x00
	StatusCannotSetRangeMin Status = 0x01
	StatusCannotSetRangeMax Status = 0x02
)

var statusNames = [...]string{
	StatusSuccess:           "SUCCESS",
	StatusCannotSetRangeMin: "CANNOT_SET_RANGE_MIN",
	StatusCannotSetRangeMax: "CANNOT_SET_RANGE_MAX",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "UNKNOWN"
}

// IsSuccess reports whether the requested range was applied.
func (s Status) IsSuccess() bool { return s == StatusSuccess }
