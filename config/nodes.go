package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// nodesFile is the on-disk shape of a node registry:
//
//	nodes:
//	  - name: bootstrap
//	    url: http://10.0.0.2:9000
//	  - name: api-gateway
//	    url: http://10.0.0.9:9020
type nodesFile struct {
	Nodes []NodeEndpoint `yaml:"nodes"`
}

// LoadNodes reads a YAML node registry. Entry order is preserved.
func LoadNodes(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read node file: %w", err)
	}

	var nf nodesFile
	if err := yaml.UnmarshalStrict(data, &nf); err != nil {
		return nil, fmt.Errorf("parse node file: %w", err)
	}
	if len(nf.Nodes) == 0 {
		return nil, fmt.Errorf("node file %s lists no nodes", path)
	}
	return Registry(nf.Nodes), nil
}
