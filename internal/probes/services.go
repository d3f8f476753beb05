package probes

// serviceNames maps well-known TCP ports to service names.
var serviceNames = map[int]string{
	20: "FTP-Data", 21: "FTP", 22: "SSH", 23: "Telnet", 25: "SMTP",
	53: "DNS", 67: "DHCP", 69: "TFTP", 80: "HTTP", 88: "Kerberos",
	110: "POP3", 111: "RPC", 119: "NNTP", 123: "NTP", 135: "MSRPC",
	137: "NetBIOS-NS", 138: "NetBIOS-DGM", 139: "NetBIOS-SSN", 143: "IMAP",
	161: "SNMP", 179: "BGP", 389: "LDAP", 443: "HTTPS", 445: "SMB",
	465: "SMTPS", 514: "Syslog", 515: "LPD", 587: "SMTP-Submission",
	631: "IPP", 636: "LDAPS", 873: "rsync", 993: "IMAPS", 995: "POP3S",
	1080: "SOCKS", 1194: "OpenVPN", 1433: "MSSQL", 1521: "Oracle",
	1723: "PPTP", 1883: "MQTT", 2049: "NFS", 2181: "ZooKeeper",
	2375: "Docker", 2376: "Docker-TLS", 2379: "etcd", 3000: "Dev-HTTP",
	3306: "MySQL", 3389: "RDP", 3690: "SVN", 4369: "EPMD", 5000: "UPnP",
	5060: "SIP", 5432: "PostgreSQL", 5672: "AMQP", 5900: "VNC",
	5984: "CouchDB", 6379: "Redis", 6443: "Kubernetes-API", 6667: "IRC",
	8000: "HTTP-Alt", 8080: "HTTP-Proxy", 8443: "HTTPS-Alt",
	8888: "HTTP-Alt", 9000: "HTTP-Alt", 9090: "Prometheus",
	9092: "Kafka", 9200: "Elasticsearch", 9418: "Git", 10250: "Kubelet",
	11211: "Memcached", 15672: "RabbitMQ-Mgmt", 27017: "MongoDB",
}

// ServiceName returns the well-known service on port, or "Unknown".
func ServiceName(port int) string {
	if name, ok := serviceNames[port]; ok {
		return name
	}
	return "Unknown"
}

// TopPorts returns a short list of commonly exposed ports.
func TopPorts() []int {
	return []int{
		21, 22, 23, 25, 53, 80, 110, 111, 135, 139,
		143, 443, 445, 993, 995, 1723, 3306, 3389, 5432, 5900,
		6379, 8080, 8443, 8888, 9200, 27017,
	}
}
