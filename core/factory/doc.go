// Package factory provides a small generic registry used to instantiate
// pluggable modules (roster readers, snapshot stores, metrics sinks) from
// configuration. A module is described by a type string and a map of raw
// settings; factories decode the settings into typed structs and return the
// concrete implementation.
//
//	reg := factory.NewRegistry[roster.Reader]()
//	reg.Register("file", func(conf map[string]any) (roster.Reader, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return roster.NewFileReader(c.Path), nil
//	})
//	r, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "roster.yaml"}})
package factory
