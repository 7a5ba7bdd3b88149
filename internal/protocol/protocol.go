package protocol

// Protocol identifies the inscription protocol a payload belongs to, e.g.
// "erc-20" or "fair-20". Unknown protocol names are carried through verbatim.
type Protocol string

// The protocols observed in the wild.
const (
	Bsc20   Protocol = "bsc-20"
	Asc20   Protocol = "asc-20"
	Prc20   Protocol = "prc-20"
	Zrc20   Protocol = "zrc-20"
	Erc20   Protocol = "erc-20"
	Grc20   Protocol = "grc-20"
	Fair20  Protocol = "fair-20"
	Oprc20  Protocol = "oprc-20"
	Osc20   Protocol = "osc-20"
	Brc20   Protocol = "brc-20"
	Frc20   Protocol = "frc-20"
	Nirc20  Protocol = "nirc-20"
	Zsc20   Protocol = "zsc-20"
	Vims20  Protocol = "vims-20"
	Era20   Protocol = "era-20"
	Bnb48   Protocol = "bnb-48"
	Gno20   Protocol = "gno-20"
	Terc20  Protocol = "terc-20"
	Nrc20   Protocol = "nrc-20"
	Bep20   Protocol = "bep-20"
	Bnb20   Protocol = "bnb-20"
	Cls20   Protocol = "cls-20"
	Base20  Protocol = "base-20"
	ErcCash Protocol = "erc-cash"
	Bnbs20  Protocol = "bnbs-20"
	Ftm20   Protocol = "ftm-20"
)

var namedProtocols = map[Protocol]struct{}{
	Bsc20: {}, Asc20: {}, Prc20: {}, Zrc20: {}, Erc20: {}, Grc20: {},
	Fair20: {}, Oprc20: {}, Osc20: {}, Brc20: {}, Frc20: {}, Nirc20: {},
	Zsc20: {}, Vims20: {}, Era20: {}, Bnb48: {}, Gno20: {}, Terc20: {},
	Nrc20: {}, Bep20: {}, Bnb20: {}, Cls20: {}, Base20: {}, ErcCash: {},
	Bnbs20: {}, Ftm20: {},
}

// IsNamed returns true if p is one of the known protocols.
func (p Protocol) IsNamed() bool {
	_, ex := namedProtocols[p]
	return ex
}

func (p Protocol) String() string {
	return string(p)
}

// NamedProtocols returns the list of known protocol names.
func NamedProtocols() []Protocol {
	out := make([]Protocol, 0, len(namedProtocols))
	for p := range namedProtocols {
		out = append(out, p)
	}
	return out
}
