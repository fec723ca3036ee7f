package data

// Icon identifies one of the weather glyphs drawn on the face.
type Icon string

const (
	IconStorm       Icon = "storm"
	IconLightRain   Icon = "light_rain"
	IconRain        Icon = "rain"
	IconSnow        Icon = "snow"
	IconFog         Icon = "fog"
	IconClear       Icon = "clear"
	IconLightClouds Icon = "light_clouds"
	IconCloudy      Icon = "cloudy"
)

// FileName is the PNG looked up in the icon directory.
func (i Icon) FileName() string {
	return "ic_" + string(i) + ".png"
}

type iconRange struct {
	from int
	to   int
	icon Icon
}

// iconTable follows the OpenWeatherMap condition codes. Order matters: the
// first matching row wins, so 761 resolves to fog before the storm row.
var iconTable = []iconRange{
	{200, 232, IconStorm},
	{300, 321, IconLightRain},
	{500, 504, IconRain},
	{511, 511, IconSnow},
	{520, 531, IconRain},
	{600, 622, IconSnow},
	{701, 761, IconFog},
	{761, 761, IconStorm},
	{771, 771, IconStorm},
	{781, 781, IconStorm},
	{800, 800, IconClear},
	{801, 801, IconLightClouds},
	{802, 804, IconCloudy},
	{900, 906, IconStorm},
	{958, 962, IconStorm},
	{951, 957, IconClear},
}

// ClassifyWeatherCondition maps a weather condition code to its icon.
// Codes outside every known range get the storm icon.
func ClassifyWeatherCondition(weatherID int) Icon {
	for _, r := range iconTable {
		if weatherID >= r.from && weatherID <= r.to {
			return r.icon
		}
	}
	return IconStorm
}
