package logfacility

import "strconv"

// Level models the severity of a single log message, lowest to highest.
type Level uint8

const (
	Debug Level = iota
	Info
	Warning
	Error
	Fatal

	// LevelNothing is not a severity any message is logged at; it is the
	// threshold value that disables a logger entirely.
	LevelNothing
)

// String renders the long form word, as used by the text config format and
// the CLI's level words.
func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	case LevelNothing:
		return "nothing"
	default:
		return strconv.Itoa(int(l))
	}
}

// Short renders the single-letter code used by the logsys CLI surface:
// D, I, W, E, F, N.
func (l Level) Short() string {
	switch l {
	case Debug:
		return "D"
	case Info:
		return "I"
	case Warning:
		return "W"
	case Error:
		return "E"
	case Fatal:
		return "F"
	case LevelNothing:
		return "N"
	default:
		return "?"
	}
}

// ParseLevel accepts either a long word in lower, Title or UPPER case, or
// a single short letter in either case, matching the two surfaces that
// need to parse one (the text config reader and the logsys CLI).
func ParseLevel(s string) (Level, bool) {
	switch s {
	case "debug", "Debug", "DEBUG", "d", "D":
		return Debug, true
	case "info", "Info", "INFO", "i", "I":
		return Info, true
	case "warning", "Warning", "WARNING", "w", "W":
		return Warning, true
	case "error", "Error", "ERROR", "e", "E":
		return Error, true
	case "fatal", "Fatal", "FATAL", "f", "F":
		return Fatal, true
	case "nothing", "Nothing", "NOTHING", "n", "N":
		return LevelNothing, true
	default:
		return 0, false
	}
}
