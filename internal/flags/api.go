package flags

import (
	"github.com/spf13/pflag"
)

// APIFlags holds listen addresses for the HTTP servers.
type APIFlags struct {
	ListenAddr  string
	MetricsAddr string
}

func NewAPIFlags(listenAddr string) *APIFlags {
	return &APIFlags{
		ListenAddr:  listenAddr,
		MetricsAddr: ":2112",
	}
}

func (f *APIFlags) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&f.ListenAddr, "listen", f.ListenAddr, "The address to serve the API on")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", f.MetricsAddr, "The address to serve prometheus metrics on, empty to disable")
}
