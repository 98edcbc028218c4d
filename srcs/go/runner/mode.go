package runner

import "errors"

// Mode selects how the launcher starts workers.
type Mode int

const (
	// Srun wraps the program in a single srun call and lets the
	// scheduler fan it out over the allocation.
	Srun Mode = iota
	// Local starts every worker as a child of the launcher.
	Local
	// SSH starts the workers of each node over ssh.
	SSH
)

const DefaultMode = Srun

var modeNames = map[Mode]string{
	Srun:  `srun`,
	Local: `local`,
	SSH:   `ssh`,
}

func ModeNames() []string {
	var names []string
	for _, name := range modeNames {
		names = append(names, name)
	}
	return names
}

func (m Mode) String() string {
	return modeNames[m]
}

// Set implements flags.Value::Set
func (m *Mode) Set(val string) error {
	value, err := ParseMode(val)
	if err != nil {
		return err
	}
	*m = *value
	return nil
}

var errInvalidMode = errors.New("invalid mode")

func ParseMode(s string) (*Mode, error) {
	for k, v := range modeNames {
		if s == v {
			return &k, nil
		}
	}
	return nil, errInvalidMode
}
