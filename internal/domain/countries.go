package domain

// Supported countries. The slice fixes picker/menu ordering; the map is for
// label lookups.
var countryOrder = []string{
	"UZ", "AE", "GE", "KZ", "TR", "PK", "PE", "CO", "RS", "MA", "NG", "SN", "IL",
}

var countryLabels = map[string]string{
	"UZ": "🇺🇿 Uzbekistan",
	"AE": "🇦🇪 UAE",
	"GE": "🇬🇪 Georgia",
	"KZ": "🇰🇿 Kazakhstan",
	"TR": "🇹🇷 Turkey",
	"PK": "🇵🇰 Pakistan",
	"PE": "🇵🇪 Peru",
	"CO": "🇨🇴 Colombia",
	"RS": "🇷🇸 Serbia",
	"MA": "🇲🇦 Morocco",
	"NG": "🇳🇬 Nigeria",
	"SN": "🇸🇳 Senegal",
	"IL": "🇮🇱 Israel",
}

// Presence groups: countries where the company has registered entities vs.
// countries with remote employees. The custom mode pages over everything.
var businessPresence = []string{"UZ", "AE", "GE", "KZ", "TR", "RS"}
var employeePresence = []string{"UZ", "KZ", "GE", "RS", "MA", "CO", "PE"}

// PopularTimezones is the fixed list offered by the timezone picker.
var PopularTimezones = []string{
	"UTC",
	"Europe/Berlin",
	"Asia/Dubai",
	"Asia/Tashkent",
	"Asia/Karachi",
	"Europe/Belgrade",
	"Africa/Casablanca",
	"Africa/Lagos",
	"America/Lima",
	"America/Bogota",
}

// CountryLabel returns the flag+name label for a code, or the code itself
// if the code is unknown.
func CountryLabel(code string) string {
	if l, ok := countryLabels[code]; ok {
		return l
	}
	return code
}

// KnownCountry reports whether the code is in the supported table.
func KnownCountry(code string) bool {
	_, ok := countryLabels[code]
	return ok
}

// CodesForMode returns the country codes offered for a subscription mode.
func CodesForMode(m Mode) []string {
	switch m {
	case ModeBusiness:
		return businessPresence
	case ModeEmployee:
		return employeePresence
	default:
		return countryOrder
	}
}

// PageSize is the number of countries shown per picker page.
const PageSize = 8

// Page slices codes for offset-based pagination. hasPrev is true iff page > 0,
// hasNext iff items remain past the returned slice. Out-of-range pages yield
// an empty slice.
func Page(codes []string, page int) (items []string, hasPrev, hasNext bool) {
	if page < 0 {
		page = 0
	}
	off := page * PageSize
	if off >= len(codes) {
		return nil, page > 0, false
	}
	end := off + PageSize
	if end > len(codes) {
		end = len(codes)
	}
	return codes[off:end], page > 0, end < len(codes)
}
