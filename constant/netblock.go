package constant

const (
	IptablesBin = "/sbin/iptables"
	RouteBin    = "ip route"
)

const (
	MaxMindDB  = "http://www.maxmind.com/download/geoip/database/GeoIPCountryCSV.zip"
	CountryDB  = "http://www.iso.org/iso/list-en1-semic-3.txt"
	GeoIPCSV   = "GeoIPCountryWhois.csv"
	CountryTXT = "country_names_and_code_elements_txt"
)

const (
	DefaultChain     = "INPUT"
	DefaultInterface = "eth0"
)

const (
	ActionCommand   = "command"
	ActionNftSet    = "nftset"
	ActionIPSet     = "ipset"
	ActionBlackhole = "blackhole"
)

const (
	// DefaultAddressPattern finds the first dotted-decimal IPv4 address in a line.
	DefaultAddressPattern = `\b(?:\d{1,3}\.){3}\d{1,3}\b`
	DefaultLogFile        = "~/.ipblock/ipblock.log"
)
