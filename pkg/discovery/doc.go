// Package discovery locates the OSC endpoint of a VRChat client on the LAN.
//
// VRChat announces an OSCQuery service over mDNS/DNS-SD:
//
// # Browse (_oscjson._tcp)
//
// The resolver browses the service type for a bounded window and records
// every distinct instance name it sees, keeping the latest address set per
// instance. Instances that only resolve to IPv6 are ignored.
//
// # HOST_INFO
//
// Each instance is asked for its host metadata with a plain HTTP GET on
// "?HOST_INFO". The JSON answer may carry NAME, OSC_IP and OSC_PORT. A
// failing or silent instance simply has no metadata.
//
// # Scoring
//
// Candidates are ranked with additive signals: the instance name mentions
// VRChat (+100), the declared host name mentions VRChat (+80), the chosen
// address is not loopback (+40). The first-seen candidate wins ties.
//
// An explicit address bypasses all of this; Resolve returns it unchanged.
package discovery
