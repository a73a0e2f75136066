package anchor

import (
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-scout/internal/model"
)

// Built-in catalog names.
const (
	CatalogIndonesia = "indonesia"
	CatalogMalaysia  = "malaysia"
)

// Tier 1: primary metros (high cost, high traffic).
// Tier 2: large cities (mid cost, large market).
// Tier 3: developing or remote (low cost, niche market).
var indonesia = Catalog{
	// Java
	{Name: "Jakarta Selatan", Region: "DKI Jakarta", Latitude: -6.2615, Longitude: 106.8106, Tier: 1, Weight: 5},
	{Name: "Jakarta Pusat", Region: "DKI Jakarta", Latitude: -6.1805, Longitude: 106.8284, Tier: 1, Weight: 5},
	{Name: "Tangerang Selatan", Region: "Banten", Latitude: -6.2886, Longitude: 106.7179, Tier: 1, Weight: 4},
	{Name: "Bandung", Region: "Jawa Barat", Latitude: -6.9175, Longitude: 107.6191, Tier: 2, Weight: 4},
	{Name: "Surabaya", Region: "Jawa Timur", Latitude: -7.2575, Longitude: 112.7521, Tier: 1, Weight: 5},
	{Name: "Semarang", Region: "Jawa Tengah", Latitude: -6.9667, Longitude: 110.4167, Tier: 2, Weight: 4},
	{Name: "Malang", Region: "Jawa Timur", Latitude: -7.9666, Longitude: 112.6326, Tier: 3, Weight: 3},
	{Name: "Yogyakarta", Region: "DI Yogyakarta", Latitude: -7.7955, Longitude: 110.3695, Tier: 3, Weight: 3},

	// Sumatra
	{Name: "Medan", Region: "Sumatera Utara", Latitude: 3.5952, Longitude: 98.6722, Tier: 2, Weight: 4},
	{Name: "Palembang", Region: "Sumatera Selatan", Latitude: -2.9909, Longitude: 104.7567, Tier: 2, Weight: 3},
	{Name: "Batam", Region: "Kep. Riau", Latitude: 1.1301, Longitude: 104.0529, Tier: 2, Weight: 3},
	{Name: "Padang", Region: "Sumatera Barat", Latitude: -0.9471, Longitude: 100.4172, Tier: 3, Weight: 2},
	{Name: "Bandar Lampung", Region: "Lampung", Latitude: -5.3971, Longitude: 105.2668, Tier: 3, Weight: 2},

	// Kalimantan
	{Name: "Balikpapan", Region: "Kalimantan Timur", Latitude: -1.2379, Longitude: 116.8529, Tier: 2, Weight: 3},
	{Name: "Pontianak", Region: "Kalimantan Barat", Latitude: -0.0263, Longitude: 109.3425, Tier: 3, Weight: 2},
	{Name: "Samarinda", Region: "Kalimantan Timur", Latitude: -0.5022, Longitude: 117.1536, Tier: 2, Weight: 2},

	// Sulawesi and the east
	{Name: "Makassar", Region: "Sulawesi Selatan", Latitude: -5.1477, Longitude: 119.4327, Tier: 2, Weight: 3},
	{Name: "Manado", Region: "Sulawesi Utara", Latitude: 1.4748, Longitude: 124.8421, Tier: 3, Weight: 2},
	{Name: "Denpasar", Region: "Bali", Latitude: -8.6705, Longitude: 115.2126, Tier: 2, Weight: 4},
	{Name: "Kupang", Region: "NTT", Latitude: -10.1772, Longitude: 123.6070, Tier: 3, Weight: 2},
	{Name: "Ambon", Region: "Maluku", Latitude: -3.6954, Longitude: 128.1814, Tier: 3, Weight: 2},
	{Name: "Jayapura", Region: "Papua", Latitude: -2.5916, Longitude: 140.6690, Tier: 3, Weight: 2},
}

// Weights are the branch counts of the source survey.
var malaysia = Catalog{
	{Name: "Kuala Lumpur", Region: "W.P. Kuala Lumpur", Latitude: 3.1390, Longitude: 101.6869, Tier: 1, Weight: 400},
	{Name: "George Town", Region: "Pulau Pinang", Latitude: 5.4164, Longitude: 100.3327, Tier: 2, Weight: 250},
	{Name: "Johor Bahru", Region: "Johor", Latitude: 1.4854, Longitude: 103.7618, Tier: 1, Weight: 300},
	{Name: "Kota Kinabalu", Region: "Sabah", Latitude: 5.9788, Longitude: 118.0894, Tier: 2, Weight: 200},
	{Name: "Kuching", Region: "Sarawak", Latitude: 1.5533, Longitude: 110.3592, Tier: 2, Weight: 200},
	{Name: "Ipoh", Region: "Perak", Latitude: 4.5921, Longitude: 101.0901, Tier: 2, Weight: 220},
	{Name: "Shah Alam", Region: "Selangor", Latitude: 3.0673, Longitude: 101.5186, Tier: 2, Weight: 280},
	{Name: "Petaling Jaya", Region: "Selangor", Latitude: 3.1731, Longitude: 101.5897, Tier: 1, Weight: 320},
	{Name: "Subang Jaya", Region: "Selangor", Latitude: 3.0456, Longitude: 101.5758, Tier: 2, Weight: 250},
	{Name: "Klang", Region: "Selangor", Latitude: 3.0333, Longitude: 101.5500, Tier: 2, Weight: 200},
	{Name: "Seremban", Region: "Negeri Sembilan", Latitude: 2.7258, Longitude: 101.9424, Tier: 3, Weight: 180},
	{Name: "Melaka", Region: "Melaka", Latitude: 2.1896, Longitude: 102.2501, Tier: 2, Weight: 200},
	{Name: "Alor Setar", Region: "Kedah", Latitude: 6.1184, Longitude: 100.3688, Tier: 3, Weight: 150},
	{Name: "Kota Bharu", Region: "Kelantan", Latitude: 6.1756, Longitude: 102.2381, Tier: 3, Weight: 170},
	{Name: "Kuantan", Region: "Pahang", Latitude: 3.8067, Longitude: 103.3256, Tier: 3, Weight: 180},
	{Name: "Putrajaya", Region: "W.P. Putrajaya", Latitude: 2.7258, Longitude: 101.6964, Tier: 2, Weight: 220},
	{Name: "Cyberjaya", Region: "Selangor", Latitude: 2.9264, Longitude: 101.6964, Tier: 2, Weight: 200},
	{Name: "Ampang", Region: "Selangor", Latitude: 3.1520, Longitude: 101.5901, Tier: 2, Weight: 250},
	{Name: "Kajang", Region: "Selangor", Latitude: 2.8386, Longitude: 101.7884, Tier: 2, Weight: 200},
	{Name: "Sungai Petani", Region: "Kedah", Latitude: 5.6411, Longitude: 100.5036, Tier: 3, Weight: 180},
	{Name: "Sandakan", Region: "Sabah", Latitude: 5.8250, Longitude: 118.1063, Tier: 3, Weight: 120},
	{Name: "Tawau", Region: "Sabah", Latitude: 4.2571, Longitude: 117.8860, Tier: 3, Weight: 120},
	{Name: "Miri", Region: "Sarawak", Latitude: 4.3973, Longitude: 113.9849, Tier: 3, Weight: 130},
	{Name: "Sibu", Region: "Sarawak", Latitude: 2.3053, Longitude: 111.8252, Tier: 3, Weight: 140},
	{Name: "Bintulu", Region: "Sarawak", Latitude: 3.1883, Longitude: 113.0313, Tier: 3, Weight: 120},
	{Name: "Kangar", Region: "Perlis", Latitude: 6.4349, Longitude: 100.2048, Tier: 3, Weight: 100},
	{Name: "Taiping", Region: "Perak", Latitude: 4.7433, Longitude: 100.7400, Tier: 3, Weight: 130},
	{Name: "Bukit Mertajam", Region: "Pulau Pinang", Latitude: 5.3667, Longitude: 100.4667, Tier: 3, Weight: 140},
	{Name: "Butterworth", Region: "Pulau Pinang", Latitude: 5.2833, Longitude: 100.3500, Tier: 3, Weight: 150},
	{Name: "Bandar Seri Begawan", Region: "Brunei-Muara", Latitude: 4.8830, Longitude: 114.9430, Tier: 3, Weight: 150},
}

// Builtin returns a copy of a built-in catalog by name.
func Builtin(name string) (Catalog, error) {
	var src Catalog
	switch strings.ToLower(strings.TrimSpace(name)) {
	case CatalogIndonesia:
		src = indonesia
	case CatalogMalaysia:
		src = malaysia
	default:
		return nil, eris.Wrapf(model.ErrInvalidParams, "anchor: unknown catalog %q", name)
	}
	return append(Catalog(nil), src...), nil
}

// Names lists the built-in catalogs.
func Names() []string {
	return []string{CatalogIndonesia, CatalogMalaysia}
}
