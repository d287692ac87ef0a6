package weather

// Icon - идентификатор значка погоды для клиента
type Icon string

// IconUnknown показывается до первого удачного запроса и для незнакомых описаний
const IconUnknown Icon = "questionmark"

// описания сравниваются с учётом регистра, как их отдаёт провайдер
var iconTable = map[string]Icon{
	"clear sky":        "sun",
	"few clouds":       "cloud.sun",
	"scattered clouds": "cloud",
	"broken clouds":    "smoke",
	"overcast clouds":  "smoke",

	"light rain":           "cloud.drizzle",
	"moderate rain":        "cloud.rain",
	"heavy intensity rain": "cloud.heavyrain",
	"shower rain":          "cloud.heavyrain",
	"rain":                 "cloud.rain",

	"thunderstorm":                 "cloud.bolt",
	"thunderstorm with rain":       "cloud.bolt.rain",
	"thunderstorm with light rain": "cloud.bolt.rain",

	"light snow": "snowflake",
	"snow":       "snowflake",
	"heavy snow": "snowflake",

	"mist": "cloud.fog",
	"haze": "cloud.fog",
	"fog":  "cloud.fog",
}

// IconFor переводит описание погоды в значок. Незнакомое описание не ошибка.
func IconFor(description string) (Icon, bool) {
	icon, ok := iconTable[description]
	if !ok {
		return IconUnknown, false
	}
	return icon, true
}
