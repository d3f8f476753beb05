// Package model defines the result records returned by netkit operations.
package model

import "time"

// CommandAvailability reports whether an external tool is installed.
type CommandAvailability struct {
	ToolName  string `json:"toolName"`
	Command   string `json:"command"`
	Available bool   `json:"available"`
}

// ToolsResult lists the availability of every external tool.
type ToolsResult struct {
	Tools   []CommandAvailability `json:"tools"`
	Success bool                  `json:"success"`
	Error   string                `json:"error,omitempty"`
}

// PingResult represents the outcome of a system ping run.
type PingResult struct {
	Host        string    `json:"host"`
	Sent        int       `json:"sent"`
	Received    int       `json:"received"`
	Lost        int       `json:"lost"`
	LossPercent int       `json:"lossPercent"`
	Times       []float64 `json:"times"`
	Min         float64   `json:"min"`
	Max         float64   `json:"max"`
	Avg         float64   `json:"avg"`
	DurationMs  int64     `json:"durationMs"`
	RawOutput   string    `json:"rawOutput"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}

// OpenPort is a port that accepted a TCP connection.
type OpenPort struct {
	Port    int    `json:"port"`
	Service string `json:"service"`
}

// PortScanResult represents the classification of every requested port.
type PortScanResult struct {
	Host          string     `json:"host"`
	TotalPorts    int        `json:"totalPorts"`
	OpenPorts     []OpenPort `json:"openPorts"`
	ClosedPorts   []int      `json:"closedPorts"`
	FilteredPorts []int      `json:"filteredPorts"`
	ScanTimeMs    int64      `json:"scanTimeMs"`
	Success       bool       `json:"success"`
	Error         string     `json:"error,omitempty"`
}

// DNSResult holds the records returned for a forward lookup.
type DNSResult struct {
	Domain      string      `json:"domain"`
	Type        string      `json:"type"`
	Records     []DNSRecord `json:"records"`
	QueryTimeMs int64       `json:"queryTimeMs"`
	Success     bool        `json:"success"`
	Error       string      `json:"error,omitempty"`
}

// ReverseDNSResult holds the PTR names for an address.
type ReverseDNSResult struct {
	IP        string   `json:"ip"`
	Hostnames []string `json:"hostnames"`
	Success   bool     `json:"success"`
	Error     string   `json:"error,omitempty"`
}

// CertName is the distinguished name of a certificate subject or issuer.
type CertName struct {
	CommonName         string   `json:"CN,omitempty"`
	Organization       []string `json:"O,omitempty"`
	OrganizationalUnit []string `json:"OU,omitempty"`
	Country            []string `json:"C,omitempty"`
	Province           []string `json:"ST,omitempty"`
	Locality           []string `json:"L,omitempty"`
}

// ChainLink is one subject/issuer pair in a certificate chain.
type ChainLink struct {
	Subject CertName `json:"subject"`
	Issuer  CertName `json:"issuer"`
}

// SSLCertificateInfo describes the certificate presented by a TLS server.
type SSLCertificateInfo struct {
	Host               string      `json:"host"`
	Port               int         `json:"port"`
	Subject            CertName    `json:"subject"`
	Issuer             CertName    `json:"issuer"`
	ValidFrom          time.Time   `json:"validFrom"`
	ValidTo            time.Time   `json:"validTo"`
	SerialNumber       string      `json:"serialNumber"`
	Fingerprint        string      `json:"fingerprint"`
	Fingerprint256     string      `json:"fingerprint256"`
	SubjectAltNames    []string    `json:"subjectAltNames"`
	IsValid            bool        `json:"isValid"`
	AuthorizationError string      `json:"authorizationError,omitempty"`
	DaysUntilExpiry    int         `json:"daysUntilExpiry"`
	Protocol           string      `json:"protocol"`
	Cipher             string      `json:"cipher"`
	Chain              []ChainLink `json:"chain"`
	Success            bool        `json:"success"`
	Error              string      `json:"error,omitempty"`
}

// WhoisFields are the normalized fields extracted from WHOIS output.
type WhoisFields struct {
	Registrar      string   `json:"registrar,omitempty"`
	RegistrantName string   `json:"registrantName,omitempty"`
	RegistrantOrg  string   `json:"registrantOrg,omitempty"`
	CreationDate   string   `json:"creationDate,omitempty"`
	ExpirationDate string   `json:"expirationDate,omitempty"`
	UpdatedDate    string   `json:"updatedDate,omitempty"`
	NameServers    []string `json:"nameServers"`
	Status         []string `json:"status"`
}

// WhoisResult represents a WHOIS query.
type WhoisResult struct {
	Domain  string      `json:"domain"`
	RawData string      `json:"rawData"`
	Parsed  WhoisFields `json:"parsed"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
}

// TraceHop represents a single hop in a traceroute.
type TraceHop struct {
	Hop     int       `json:"hop"`
	Host    string    `json:"host"`
	IP      string    `json:"ip,omitempty"`
	Times   []float64 `json:"times"`
	AvgTime float64   `json:"avgTime"`
	Timeout bool      `json:"timeout"`
}

// TracerouteResult represents a complete traceroute run.
type TracerouteResult struct {
	Host      string     `json:"host"`
	Hops      []TraceHop `json:"hops"`
	RawOutput string     `json:"rawOutput"`
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
}

// HTTPTiming holds request timings.
type HTTPTiming struct {
	ResponseTimeMs int64 `json:"responseTimeMs"`
}

// HTTPHeadersResult represents the response headers of a HEAD request.
// Absent security headers are kept in the map with a nil value.
type HTTPHeadersResult struct {
	URL             string             `json:"url"`
	StatusCode      int                `json:"statusCode"`
	StatusMessage   string             `json:"statusMessage"`
	Headers         map[string]string  `json:"headers"`
	SecurityHeaders map[string]*string `json:"securityHeaders"`
	Timing          HTTPTiming         `json:"timing"`
	Success         bool               `json:"success"`
	Error           string             `json:"error,omitempty"`
}

// SubnetInfo is the arithmetic breakdown of an IPv4 CIDR block.
type SubnetInfo struct {
	NetworkAddress   string `json:"networkAddress"`
	BroadcastAddress string `json:"broadcastAddress"`
	SubnetMask       string `json:"subnetMask"`
	WildcardMask     string `json:"wildcardMask"`
	FirstHost        string `json:"firstHost"`
	LastHost         string `json:"lastHost"`
	TotalHosts       int64  `json:"totalHosts"`
	UsableHosts      int64  `json:"usableHosts"`
	Prefix           int    `json:"prefix"`
	IPClass          string `json:"ipClass"`
	IsPrivate        bool   `json:"isPrivate"`
	BinaryMask       string `json:"binaryMask"`
}

// SubnetResult wraps a subnet calculation.
type SubnetResult struct {
	CIDR    string      `json:"cidr"`
	Info    *SubnetInfo `json:"info,omitempty"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
}

// WakeOnLANResult reports whether a magic packet was sent.
type WakeOnLANResult struct {
	Success   bool   `json:"success"`
	MAC       string `json:"mac"`
	Broadcast string `json:"broadcast"`
	Port      int    `json:"port"`
	Error     string `json:"error,omitempty"`
}

// ScanHost represents a live host discovered by a network scan.
type ScanHost struct {
	IP             string  `json:"ip"`
	ResponseTimeMs float64 `json:"responseTimeMs"`
	Hostname       string  `json:"hostname,omitempty"`
}

// NetworkScanResult represents a subnet host discovery sweep.
type NetworkScanResult struct {
	Subnet       string      `json:"subnet"`
	SubnetInfo   *SubnetInfo `json:"subnetInfo,omitempty"`
	Hosts        []ScanHost  `json:"hosts"`
	ScanTimeMs   int64       `json:"scanTimeMs"`
	ScannedCount int         `json:"scannedCount"`
	Success      bool        `json:"success"`
	Error        string      `json:"error,omitempty"`
}

// NetworkInterfaceInfo describes one address of a local interface.
type NetworkInterfaceInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Netmask string `json:"netmask"`
	Family  string `json:"family"`
	MAC     string `json:"mac"`
	CIDR    string `json:"cidr,omitempty"`
}

// InterfacesResult lists local non-loopback interface addresses.
type InterfacesResult struct {
	Interfaces []NetworkInterfaceInfo `json:"interfaces"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
}

// HistoryEntry is a journaled operation result.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	Operation  string    `json:"operation"`
	Target     string    `json:"target"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Payload    string    `json:"payload"`
	CreatedAt  time.Time `json:"created_at"`
}
