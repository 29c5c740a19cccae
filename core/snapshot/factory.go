package snapshot

import "github.com/kilianp07/minesched/core/factory"

var storeRegistry = factory.NewRegistry[Store]()

// RegisterStore adds a snapshot store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates a Store from its module configuration. An empty type
// selects the in-memory store.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	return storeRegistry.Create(cfg)
}

func init() {
	_ = RegisterStore("memory", func(conf map[string]any) (Store, error) {
		var c struct {
			MaxItems int `json:"max_items"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewMemoryStore(c.MaxItems), nil
	})
}

// StoreTypes lists the registered store types.
func StoreTypes() []string { return storeRegistry.Types() }
