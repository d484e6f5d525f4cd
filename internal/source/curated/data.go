package curated

import "github.com/stordev/sitescout/internal/sites"

// The current expansion market is metro Atlanta and its exurb ring.
// Coordinates are the county seat's city center; FIPS codes are the
// five-digit state+county form QCEW expects.
var countySeats = []CountySeat{
	{County: "Fulton", State: "GA", Seat: "Atlanta", FIPS: "13121", Lat: 33.7490, Lng: -84.3880},
	{County: "Cobb", State: "GA", Seat: "Marietta", FIPS: "13067", Lat: 33.9526, Lng: -84.5499},
	{County: "DeKalb", State: "GA", Seat: "Decatur", FIPS: "13089", Lat: 33.7748, Lng: -84.2963},
	{County: "Gwinnett", State: "GA", Seat: "Lawrenceville", FIPS: "13135", Lat: 33.9562, Lng: -83.9879},
	{County: "Cherokee", State: "GA", Seat: "Canton", FIPS: "13057", Lat: 34.2368, Lng: -84.4908},
	{County: "Forsyth", State: "GA", Seat: "Cumming", FIPS: "13117", Lat: 34.2073, Lng: -84.1402},
	{County: "Hall", State: "GA", Seat: "Gainesville", FIPS: "13139", Lat: 34.2979, Lng: -83.8241},
	{County: "Paulding", State: "GA", Seat: "Dallas", FIPS: "13223", Lat: 33.9237, Lng: -84.8408},
	{County: "Bartow", State: "GA", Seat: "Cartersville", FIPS: "13015", Lat: 34.1651, Lng: -84.8000},
	{County: "Henry", State: "GA", Seat: "McDonough", FIPS: "13151", Lat: 33.4473, Lng: -84.1469},
	{County: "Clayton", State: "GA", Seat: "Jonesboro", FIPS: "13063", Lat: 33.5215, Lng: -84.3538},
	{County: "Coweta", State: "GA", Seat: "Newnan", FIPS: "13077", Lat: 33.3807, Lng: -84.7997},
	{County: "Fayette", State: "GA", Seat: "Fayetteville", FIPS: "13113", Lat: 33.4487, Lng: -84.4549},
	{County: "Douglas", State: "GA", Seat: "Douglasville", FIPS: "13097", Lat: 33.7515, Lng: -84.7477},
	{County: "Carroll", State: "GA", Seat: "Carrollton", FIPS: "13045", Lat: 33.5801, Lng: -85.0766},
	{County: "Walton", State: "GA", Seat: "Monroe", FIPS: "13297", Lat: 33.7948, Lng: -83.7132},
	{County: "Newton", State: "GA", Seat: "Covington", FIPS: "13217", Lat: 33.5968, Lng: -83.8602},
	{County: "Rockdale", State: "GA", Seat: "Conyers", FIPS: "13247", Lat: 33.6676, Lng: -84.0177},
	{County: "Barrow", State: "GA", Seat: "Winder", FIPS: "13013", Lat: 33.9926, Lng: -83.7202},
	{County: "Jackson", State: "GA", Seat: "Jefferson", FIPS: "13157", Lat: 34.1173, Lng: -83.5724},
	{County: "Dawson", State: "GA", Seat: "Dawsonville", FIPS: "13085", Lat: 34.4212, Lng: -84.1191},
	{County: "Pickens", State: "GA", Seat: "Jasper", FIPS: "13227", Lat: 34.4676, Lng: -84.4294},
}

var militaryBases = []sites.MilitaryBase{
	{Name: "Fort Moore", Branch: "Army", County: "Chattahoochee", State: "GA", Personnel: 35000, Lat: 32.3539, Lng: -84.9430},
	{Name: "Fort Eisenhower", Branch: "Army", County: "Richmond", State: "GA", Personnel: 25000, Lat: 33.4180, Lng: -82.1350},
	{Name: "Fort Stewart", Branch: "Army", County: "Liberty", State: "GA", Personnel: 24000, Lat: 31.8691, Lng: -81.6090},
	{Name: "Hunter Army Airfield", Branch: "Army", County: "Chatham", State: "GA", Personnel: 5500, Lat: 32.0100, Lng: -81.1460},
	{Name: "Robins Air Force Base", Branch: "Air Force", County: "Houston", State: "GA", Personnel: 22000, Lat: 32.6400, Lng: -83.5917},
	{Name: "Moody Air Force Base", Branch: "Air Force", County: "Lowndes", State: "GA", Personnel: 10000, Lat: 30.9678, Lng: -83.1930},
	{Name: "Dobbins Air Reserve Base", Branch: "Air Force", County: "Cobb", State: "GA", Personnel: 5000, Lat: 33.9153, Lng: -84.5161},
	{Name: "Naval Submarine Base Kings Bay", Branch: "Navy", County: "Camden", State: "GA", Personnel: 9000, Lat: 30.7976, Lng: -81.5160},
	{Name: "Marine Corps Logistics Base Albany", Branch: "Marine Corps", County: "Dougherty", State: "GA", Personnel: 3500, Lat: 31.5520, Lng: -84.0513},
}

var universities = []sites.University{
	{Name: "University of Georgia", County: "Clarke", State: "GA", Enrollment: 40000, Lat: 33.9480, Lng: -83.3773},
	{Name: "Georgia Institute of Technology", County: "Fulton", State: "GA", Enrollment: 45000, Lat: 33.7756, Lng: -84.3963},
	{Name: "Georgia State University", County: "Fulton", State: "GA", Enrollment: 52000, Lat: 33.7530, Lng: -84.3853},
	{Name: "Kennesaw State University", County: "Cobb", State: "GA", Enrollment: 45000, Lat: 34.0386, Lng: -84.5827},
	{Name: "Emory University", County: "DeKalb", State: "GA", Enrollment: 15000, Lat: 33.7925, Lng: -84.3240},
	{Name: "Georgia Southern University", County: "Bulloch", State: "GA", Enrollment: 26000, Lat: 32.4240, Lng: -81.7834},
	{Name: "Augusta University", County: "Richmond", State: "GA", Enrollment: 9500, Lat: 33.4735, Lng: -82.0226},
	{Name: "Mercer University", County: "Bibb", State: "GA", Enrollment: 9000, Lat: 32.8320, Lng: -83.6497},
	{Name: "University of West Georgia", County: "Carroll", State: "GA", Enrollment: 13000, Lat: 33.5730, Lng: -85.1030},
	{Name: "Valdosta State University", County: "Lowndes", State: "GA", Enrollment: 12000, Lat: 30.8486, Lng: -83.2893},
	{Name: "Georgia Gwinnett College", County: "Gwinnett", State: "GA", Enrollment: 12000, Lat: 33.9810, Lng: -84.0039},
	{Name: "Columbus State University", County: "Muscogee", State: "GA", Enrollment: 8000, Lat: 32.4972, Lng: -84.9402},
}

// Known hubs that opened before the Places loader first ran, or that the
// API reports under an unhelpful name.
var distributionHubs = []sites.LogisticsFacility{
	{PlaceID: "curated:amazon-atl6", Name: "Amazon Fulfillment Center ATL6", Company: "Amazon", Category: "Fulfillment Center", Address: "4200 North Commerce Dr, East Point, GA", County: "Fulton", State: "GA", Zip: "30344", Lat: 33.6580, Lng: -84.5060},
	{PlaceID: "curated:amazon-mge1", Name: "Amazon Fulfillment Center MGE1", Company: "Amazon", Category: "Fulfillment Center", Address: "2201 Thornton Taylor Pkwy, Fayetteville, GA", County: "Fayette", State: "GA", Zip: "30214", Lat: 33.4750, Lng: -84.4390},
	{PlaceID: "curated:ups-whq", Name: "UPS Smart Hub Atlanta", Company: "UPS", Category: "Distribution Hub", Address: "270 Marvin Miller Dr, Atlanta, GA", County: "Fulton", State: "GA", Zip: "30336", Lat: 33.7430, Lng: -84.5560},
	{PlaceID: "curated:home-depot-dc", Name: "Home Depot Direct Fulfillment Center", Company: "Home Depot", Category: "Distribution Center", Address: "4100 Jimmy Carter Blvd, Norcross, GA", County: "Gwinnett", State: "GA", Zip: "30093", Lat: 33.8980, Lng: -84.1920},
	{PlaceID: "curated:kroger-atl", Name: "Kroger Atlanta Distribution Center", Company: "Kroger", Category: "Distribution Center", Address: "5150 Fulton Industrial Blvd SW, Atlanta, GA", County: "Fulton", State: "GA", Zip: "30336", Lat: 33.7350, Lng: -84.5830},
}

// Default ZCTA canvass for the ACS loader, covering the same market as the
// county-seat list.
var zctas = []string{
	"30002", "30004", "30005", "30008", "30009", "30011", "30012", "30013",
	"30014", "30016", "30017", "30019", "30021", "30022", "30024", "30025",
	"30028", "30030", "30032", "30033", "30034", "30038", "30039", "30040",
	"30041", "30043", "30044", "30045", "30046", "30047", "30052", "30054",
	"30058", "30060", "30062", "30064", "30066", "30067", "30068", "30071",
	"30075", "30076", "30078", "30080", "30082", "30084", "30087", "30088",
	"30092", "30093", "30094", "30096", "30097", "30101", "30102", "30114",
	"30115", "30116", "30117", "30120", "30121", "30122", "30126", "30127",
	"30132", "30134", "30135", "30141", "30143", "30144", "30152", "30157",
	"30168", "30180", "30183", "30184", "30188", "30189", "30213", "30214",
	"30215", "30228", "30236", "30238", "30248", "30252", "30253", "30263",
	"30265", "30269", "30281", "30288", "30290", "30291", "30294",
}
