// Package pages holds the closed catalogue of wiki pages: the page key
// enumeration, the breadcrumb labels, and the content library built from the
// embedded markdown articles.
package pages

// Key identifies one static content view. The set is closed; every
// navigable page is one of the constants below.
type Key int

const (
	Home Key = iota
	CicloVida
	Cascada
	Prototipos
	RAD
	Evolutivo
	Espiral
	VModel
	Docente
)

// DefaultKey is the view shown on load and for unrecognized keys.
const DefaultKey = Home

var allKeys = []Key{Home, CicloVida, Cascada, Prototipos, RAD, Evolutivo, Espiral, VModel, Docente}

// All returns every page key in sidebar order.
func All() []Key {
	out := make([]Key, len(allKeys))
	copy(out, allKeys)
	return out
}

// String returns the slug used in data-page attributes and URLs.
func (k Key) String() string {
	switch k {
	case Home:
		return "home"
	case CicloVida:
		return "ciclo-vida"
	case Cascada:
		return "cascada"
	case Prototipos:
		return "prototipos"
	case RAD:
		return "rad"
	case Evolutivo:
		return "evolutivo"
	case Espiral:
		return "espiral"
	case VModel:
		return "v-model"
	case Docente:
		return "docente"
	default:
		return ""
	}
}

// Label returns the human-readable breadcrumb label.
func (k Key) Label() string {
	switch k {
	case Home:
		return "Inicio"
	case CicloVida:
		return "Ciclo de Vida del Software"
	case Cascada:
		return "Modelo en Cascada"
	case Prototipos:
		return "Modelo de Prototipos"
	case RAD:
		return "Modelo RAD"
	case Evolutivo:
		return "Modelo Evolutivo"
	case Espiral:
		return "Modelo en Espiral"
	case VModel:
		return "Modelo en V"
	case Docente:
		return "Información del Docente"
	default:
		return ""
	}
}

// Icon returns the Font Awesome class for the sidebar entry.
func (k Key) Icon() string {
	switch k {
	case Home:
		return "fas fa-home"
	case CicloVida:
		return "fas fa-sync-alt"
	case Cascada:
		return "fas fa-stream"
	case Prototipos:
		return "fas fa-cube"
	case RAD:
		return "fas fa-rocket"
	case Evolutivo:
		return "fas fa-seedling"
	case Espiral:
		return "fas fa-spinner"
	case VModel:
		return "fas fa-check-double"
	case Docente:
		return "fas fa-user-tie"
	default:
		return ""
	}
}

// Valid reports whether k is one of the declared keys.
func (k Key) Valid() bool {
	return k >= Home && k <= Docente
}

// Parse maps a raw page string to its key. Keys are opaque: only an exact
// slug matches, so "CASCADA" or "#cascada" are unknown pages.
func Parse(raw string) (Key, bool) {
	for _, k := range allKeys {
		if k.String() == raw {
			return k, true
		}
	}
	return DefaultKey, false
}

// LabelFor returns the breadcrumb label for a raw page string, falling back
// to the raw string itself when it is not a known key.
func LabelFor(raw string) string {
	if k, ok := Parse(raw); ok {
		return k.Label()
	}
	return raw
}
