package acorn

// Bootstrap resolves descs with a fresh engine and returns an initialized
// container. On failure no container is returned.
func Bootstrap(cfg Config, descs []*Descriptor, opts ...RuntimeOption) (*Container, error) {
	inst := NewInstantiator(opts...)
	engine, err := NewEngine(cfg, inst, opts...)
	if err != nil {
		return nil, err
	}

	built, err := engine.InstantiateAll(descs)
	if err != nil {
		return nil, err
	}

	c := NewContainer(opts...)
	if err := c.Init(built, inst); err != nil {
		return nil, err
	}
	return c, nil
}

// BootstrapCatalog is [Bootstrap] over the descriptors of cat.
func BootstrapCatalog(cat *Catalog, opts ...RuntimeOption) (*Container, error) {
	return Bootstrap(cat.cfg, cat.Descriptors(), opts...)
}
