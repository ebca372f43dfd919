package device

import "fmt"

// Info is the serializable view of a Device.
type Info struct {
	Path       string   `json:"path" yaml:"path"`
	Types      []string `json:"types" yaml:"types"`
	Attributes []string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Vendor     string   `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Name       string   `json:"name,omitempty" yaml:"name,omitempty"`
	VendorID   string   `json:"vendorID,omitempty" yaml:"vendorID,omitempty"`
	ProductID  string   `json:"productID,omitempty" yaml:"productID,omitempty"`
	Modalias   string   `json:"modalias,omitempty" yaml:"modalias,omitempty"`
	Driver     string   `json:"driver,omitempty" yaml:"driver,omitempty"`
	Parent     string   `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Info returns the serializable view of d. IDs are rendered as 4-digit hex.
func (d *Device) Info() Info {
	i := Info{
		Path:       d.path,
		Types:      d.types.Names(),
		Attributes: d.attrs.Names(),
		Vendor:     d.vendor,
		Name:       d.name,
		Modalias:   d.modalias,
		Driver:     d.driver,
	}
	if d.vendorID != 0 {
		i.VendorID = fmt.Sprintf("%04x", d.vendorID)
	}
	if d.productID != 0 {
		i.ProductID = fmt.Sprintf("%04x", d.productID)
	}
	if d.parent != nil {
		i.Parent = d.parent.path
	}
	return i
}

// Infos maps Info over devs.
func Infos(devs []*Device) []Info {
	out := make([]Info, 0, len(devs))
	for _, d := range devs {
		out = append(out, d.Info())
	}
	return out
}
