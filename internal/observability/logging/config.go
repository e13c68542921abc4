package logging

// Config for NewLogger. Format is "pretty" or "jsonl"; Output is "stderr"
// or a file path.
type Config struct {
	Format string
	Level  string
	Output string
}

func DefaultConfig() Config {
	return Config{
		Format: "pretty",
		Level:  LevelInfo,
		Output: "stderr",
	}
}

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

var levelPriorities = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// levelPriority treats unknown levels as info.
func levelPriority(level string) int {
	if p, ok := levelPriorities[level]; ok {
		return p
	}
	return 1
}
