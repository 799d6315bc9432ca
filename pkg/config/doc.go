// Package config loads fixture files into an httpmock.Mock.
//
// A fixture is a YAML or JSON document describing hosts, paths, and the
// responses queued for them:
//
//	defaultDomain: api.example.com
//	unmockedPolicy: notFound
//	hosts:
//	  - host: api.example.com
//	    headers:
//	      X-Env: test
//	    paths:
//	      - path: /v1/users
//	        query:
//	          page: "1"
//	        responses:
//	          - json: [{"id": 1}]
//	          - status: 503
//	            text: try again
//	            lifetime: multiple
//	            times: 2
//	            delay: 150ms
//
// Fixtures support ${VAR} and ${VAR:-default} environment expansion and are
// validated against a JSON Schema before they are applied:
//
//	fx, err := config.Load("fixtures/users.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	n, err := config.Apply(fx, httpmock.New())
//
// LoadGlob merges every file matching a doublestar pattern, and Watch reloads
// a fixture when it changes on disk.
package config
