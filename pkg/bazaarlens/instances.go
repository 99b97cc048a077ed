package bazaarlens

// InstanceCatalog maps per-run instance ids to template ids.
// It only grows until the tracker is reset.
type InstanceCatalog struct {
	templates map[string]string
}

// NewInstanceCatalog returns a catalog seeded with a copy of templates.
func NewInstanceCatalog(templates map[string]string) *InstanceCatalog {
	m := make(map[string]string, len(templates))
	for iid, tid := range templates {
		m[iid] = tid
	}
	return &InstanceCatalog{templates: m}
}

// Record stores iid -> tid, replacing any previous mapping.
func (c *InstanceCatalog) Record(iid, tid string) {
	c.templates[iid] = tid
}

// Resolve returns the template id for iid, or iid itself when unknown.
func (c *InstanceCatalog) Resolve(iid string) string {
	if tid, ok := c.templates[iid]; ok {
		return tid
	}
	return iid
}

// Len returns the number of known instances.
func (c *InstanceCatalog) Len() int {
	return len(c.templates)
}

// Mapping returns a copy of the iid -> tid table.
func (c *InstanceCatalog) Mapping() map[string]string {
	m := make(map[string]string, len(c.templates))
	for iid, tid := range c.templates {
		m[iid] = tid
	}
	return m
}
