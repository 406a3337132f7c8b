package connection

// Connections holds the optional cloud connections used by bucket sources and destinations.
// A nil connection uses the default credential chain of the SDK
type Connections struct {
	Aws *AwsConnection
	Gcp *GcpConnection
}
