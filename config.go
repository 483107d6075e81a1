package nullmodem

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
	ParityMark
	ParitySpace
)

// Config holds the serial configuration snapshot for an endpoint. On a
// virtual wire these values are recorded for introspection only; no timing
// or framing is enforced.
type Config struct {
	BaudRate int
	DataBits int
	StopBits int
	Parity   Parity

	// Initial signal states applied when the port opens (nil = leave as-is)
	InitialRTS *bool
	InitialDTR *bool
}

// Option is a functional option for configuring an endpoint
type Option func(*Config) error

// DefaultConfig returns a configuration with the wire's defaults (38400 8N1,
// matching the reference device's initial termios)
func DefaultConfig() Config {
	return Config{
		BaudRate: 38400,
		DataBits: 8,
		StopBits: 1,
		Parity:   ParityNone,
	}
}

// validBaudRates lists the standard rates a real UART would accept. The
// virtual wire never paces output, but nonsense rates are still rejected so
// configurations stay portable to real hardware.
var validBaudRates = map[int]bool{
	50: true, 75: true, 110: true, 134: true, 150: true, 200: true,
	300: true, 600: true, 1200: true, 1800: true, 2400: true, 4800: true,
	9600: true, 19200: true, 38400: true, 57600: true, 115200: true,
	230400: true, 460800: true, 500000: true, 576000: true, 921600: true,
	1000000: true, 1152000: true, 1500000: true, 2000000: true,
	2500000: true, 3000000: true, 3500000: true, 4000000: true,
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !validBaudRates[rate] {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		c.Parity = parity
		return nil
	}
}

// WithInitialRTS sets the RTS state asserted when the port opens
func WithInitialRTS(state bool) Option {
	return func(c *Config) error {
		c.InitialRTS = &state
		return nil
	}
}

// WithInitialDTR sets the DTR state asserted when the port opens
func WithInitialDTR(state bool) Option {
	return func(c *Config) error {
		c.InitialDTR = &state
		return nil
	}
}
