/*
Package config loads rule engine configuration from YAML or JSON.

# Document Shape

	engine:
	  max_length: 4096
	  max_depth: 32
	  pool_limit: 100000
	  full_trace: false
	rules:
	  - name: adult
	    expression: "{input.age >= 18}"
	  - name: vip
	    expression: "premium | {input.spend > 1000}"
	    params:
	      full_trace: true
	      max_depth: 8
	traces:
	  backend: sqlite
	  path: traces.db
	  retention: 168h

Documents are validated against an embedded JSON schema before decoding, so
unknown keys and wrongly typed values are rejected with every violation listed.

# Loading

	cfg, err := config.FromFile("rules.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	pool := cfg.NewPool()
	expr, err := atomexpr.Parse(text, h, append(cfg.ParseOptions(), atomexpr.WithPool(pool))...)

# Rule Params

Each rule may override engine settings through its params. Values may be
given natively or as strings ("true", "16"):

	full_trace   evaluate every atom of the rule (bool)
	record       persist the rule's traces when a store is configured (bool, default true)
	optimize     false keeps And/Or children in source order (bool, default true)
	max_length   maximum expression length in bytes (int)
	max_depth    maximum nesting depth (int)

Durations in traces.retention accept Go duration strings or a number of seconds.
*/
package config
