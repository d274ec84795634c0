package domain

// Property is one stored account attribute together with its privacy
// scope. Scope stays in its raw stored form here; parsing happens at
// resolution time so a corrupted row degrades to withheld instead of
// failing the load.
type Property struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Scope    string `json:"scope"`
	Verified bool   `json:"verified"`
}

// Account is the profile owner's stored data, with properties in
// presentation order.
type Account struct {
	UserID     string     `json:"userId"`
	Properties []Property `json:"properties"`
}

// Property returns the named property, or nil when the owner never
// set it.
func (a Account) Property(name string) *Property {
	for i := range a.Properties {
		if a.Properties[i].Name == name {
			return &a.Properties[i]
		}
	}
	return nil
}

// PropertyValue returns the value of the named property, or nil when
// absent.
func (a Account) PropertyValue(name string) *string {
	p := a.Property(name)
	if p == nil {
		return nil
	}
	return &p.Value
}
