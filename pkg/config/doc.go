// Package config loads expectations from YAML fixture files.
//
// A fixture file holds either a document with options and a list of
// expectations, or a bare list of expectations:
//
//	allowUnexpected: false
//	expectations:
//	  - method: GET
//	    uri: /users/{id}
//	    match:
//	      headers:
//	        Accept: application/json
//	    response:
//	      status: 200
//	      template: '{"id": "{{request.params.id}}"}'
//	  - method: POST
//	    uri: https://api.example.com/orders
//	    match:
//	      jsonPath:
//	        $.total: 150
//	      expr: headers["X-Tenant"] == "acme"
//	    response:
//	      status: 201
//	      json:
//	        id: order-1
//
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing. Expectations are registered in file order, so the first
// one listed wins when several match the same call.
//
//	fixtures, err := config.LoadGlob("testdata/**/*.yaml")
//	if err != nil {
//	    return err
//	}
//	h := fake.New()
//	for _, f := range fixtures {
//	    if err := f.Apply(h); err != nil {
//	        return err
//	    }
//	}
package config
