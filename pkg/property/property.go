// Package property defines the canonical AD binding properties, their
// dsconfigad output labels and CLI flag spellings, and the value model
// shared by the state reader, the flag builder and the reconciler.
package property

import (
	"errors"
	"fmt"
	"slices"
)

// Key is the stable symbolic name of a binding property.
type Key string

const (
	FQDN          Key = "fqdn"
	Computer      Key = "computer"
	Mobile        Key = "mobile"
	MobileConfirm Key = "mobileconfirm"
	LocalHome     Key = "localhome"
	UseUNCPath    Key = "useuncpath"
	Protocol      Key = "protocol"
	Shell         Key = "shell"
	UID           Key = "uid"
	GID           Key = "gid"
	GGID          Key = "ggid"
	Authority     Key = "authority"
	Preferred     Key = "preferred"
	Groups        Key = "groups"
	AllDomains    Key = "alldomains"
	PacketSign    Key = "packetsign"
	PacketEncrypt Key = "packetencrypt"
	Namespace     Key = "namespace"
	PassInterval  Key = "passinterval"
	RestrictDDNS  Key = "restrictddns"
)

// Kind is the semantic type of a property value.
type Kind string

const (
	KindToggle  Kind = "toggle"  // enable / disable
	KindString  Kind = "string"  // free-form value
	KindList    Kind = "list"    // ordered list, comma-joined on the command line
	KindEnum    Kind = "enum"    // one of Descriptor.Enum
	KindInteger Kind = "integer" // decimal number
)

// Descriptor describes how one property is read and written.
type Descriptor struct {
	Key   Key
	Label string // label in `dsconfigad -show -xml` output
	Flag  string // flag spelling without the leading dash
	Kind  Kind
	Enum  []string

	// NoFlag allows an empty desired value to be written as -no<flag>.
	NoFlag bool
	// Configurable properties can be changed on a bound host with a
	// configuration invocation. fqdn and computer only change by rebinding.
	Configurable bool
}

// table is the single source of truth. Its order is the order in which
// configuration flags are emitted.
var table = []Descriptor{
	{Key: FQDN, Label: "Active Directory Domain", Flag: "add", Kind: KindString},
	{Key: Computer, Label: "Computer Account", Flag: "computer", Kind: KindString},
	{Key: Mobile, Label: "Create mobile account at login", Flag: "mobile", Kind: KindToggle, Configurable: true},
	{Key: MobileConfirm, Label: "Require confirmation", Flag: "mobileconfirm", Kind: KindToggle, Configurable: true},
	{Key: LocalHome, Label: "Force home to startup disk", Flag: "localhome", Kind: KindToggle, Configurable: true},
	{Key: UseUNCPath, Label: "Use Windows UNC path for home", Flag: "useuncpath", Kind: KindToggle, Configurable: true},
	{Key: Protocol, Label: "Network protocol", Flag: "protocol", Kind: KindEnum, Enum: []string{"afp", "smb"}, Configurable: true},
	{Key: Shell, Label: "Shell", Flag: "shell", Kind: KindString, Configurable: true},
	{Key: UID, Label: "UID Mapping", Flag: "uid", Kind: KindString, NoFlag: true, Configurable: true},
	{Key: GID, Label: "User GID Mapping", Flag: "gid", Kind: KindString, NoFlag: true, Configurable: true},
	{Key: GGID, Label: "Group GID Mapping", Flag: "ggid", Kind: KindString, NoFlag: true, Configurable: true},
	{Key: Authority, Label: "Generate Kerberos authority", Flag: "authority", Kind: KindToggle, Configurable: true},
	{Key: Preferred, Label: "Preferred Domain controller", Flag: "preferred", Kind: KindString, NoFlag: true, Configurable: true},
	{Key: Groups, Label: "Allowed admin groups", Flag: "groups", Kind: KindList, NoFlag: true, Configurable: true},
	{Key: AllDomains, Label: "Authentication from any domain", Flag: "alldomains", Kind: KindToggle, Configurable: true},
	{Key: PacketSign, Label: "Packet signing", Flag: "packetsign", Kind: KindEnum, Enum: []string{"disable", "allow", "require"}, Configurable: true},
	{Key: PacketEncrypt, Label: "Packet encryption", Flag: "packetencrypt", Kind: KindEnum, Enum: []string{"disable", "allow", "require", "ssl"}, Configurable: true},
	{Key: Namespace, Label: "Namespace mode", Flag: "namespace", Kind: KindEnum, Enum: []string{"forest", "domain"}, Configurable: true},
	{Key: PassInterval, Label: "Password change interval", Flag: "passinterval", Kind: KindInteger, Configurable: true},
	{Key: RestrictDDNS, Label: "Restrict Dynamic DNS updates", Flag: "restrictDDNS", Kind: KindList, Configurable: true},
}

var (
	byKey   = make(map[Key]int, len(table))
	byLabel = make(map[string]int, len(table))
)

func init() {
	for i, d := range table {
		byKey[d.Key] = i
		byLabel[d.Label] = i
	}
}

// ErrUnknownProperty is matched by every *UnknownPropertyError.
var ErrUnknownProperty = errors.New("unknown property")

// UnknownPropertyError reports a label or key with no table entry.
type UnknownPropertyError struct {
	Name string
}

func (e *UnknownPropertyError) Error() string {
	return fmt.Sprintf("unknown property %q", e.Name)
}

func (e *UnknownPropertyError) Is(target error) bool {
	return target == ErrUnknownProperty
}

// All returns every descriptor in table order.
func All() []Descriptor {
	return slices.Clone(table)
}

// Lookup returns the descriptor for key.
func Lookup(key Key) (Descriptor, error) {
	i, ok := byKey[key]
	if !ok {
		return Descriptor{}, &UnknownPropertyError{Name: string(key)}
	}
	return table[i], nil
}

// ToLabel returns the dsconfigad output label for key, or "" if key is unknown.
func ToLabel(key Key) string {
	if i, ok := byKey[key]; ok {
		return table[i].Label
	}
	return ""
}

// FromLabel maps a dsconfigad output label back to its key.
func FromLabel(label string) (Key, error) {
	i, ok := byLabel[label]
	if !ok {
		return "", &UnknownPropertyError{Name: label}
	}
	return table[i].Key, nil
}

// Order returns the position of key in the table, used for stable sorting.
// Unknown keys sort last.
func Order(key Key) int {
	if i, ok := byKey[key]; ok {
		return i
	}
	return len(table)
}
