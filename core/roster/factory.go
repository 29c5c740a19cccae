package roster

import "github.com/kilianp07/minesched/core/factory"

var readerRegistry = factory.NewRegistry[Reader]()

// RegisterReader adds a roster reader factory identified by name.
func RegisterReader(name string, f factory.Factory[Reader]) error {
	return readerRegistry.Register(name, f)
}

// NewReader creates a Reader from its module configuration.
func NewReader(cfg factory.ModuleConfig) (Reader, error) {
	return readerRegistry.Create(cfg)
}

func init() {
	_ = RegisterReader("file", func(conf map[string]any) (Reader, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "roster.yaml"
		}
		return NewFileReader(c.Path), nil
	})
}

// ReaderTypes lists the registered reader types.
func ReaderTypes() []string { return readerRegistry.Types() }
