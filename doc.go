// Package axelarscan and its sub-packages implement the backend of the Axelarscan explorer front-end: the data
// normalization and display cores plus the services exposing them.
/*
axelarscan provides two microservices and a command line tool:

1) an API microservice (package api) that implements a RESTful API for the explorer front-end: chain and asset
 lookups, ERC20 token metadata, name-service resolution of addresses, validator identity pictures and number and time
 formatting.

2) a resolver microservice (package resolver) that resolves, in batches, the addresses whose names were requested
 through the message broker and stores the records found.

3) a command line tool (cmd/axelarscan) running the same lookups and formatting locally.

Architecture

The API and resolver services communicate via a message broker (package lib/msg). Clients ask the API to resolve or
forget an address and the request is published to the broker. The resolver consumes requests, queues the addresses,
resolves them in rounds and publishes an event per address. The API consumes these events to refresh its caches.

The resolver persists the records found and its pending queues in a database (package lib/store, MongoDB or
PostgreSQL). The API reads the stored records from the same database.

Name services (package lib/names) share one aggregation pattern: addresses are normalized and chunked, each chunk is
paginated against the remote source, records are merged by id and addresses without a match get a placeholder, so
every address resolves to exactly one record. ENS, Lens, SPACE ID and Unstoppable Domains are implemented.

Chains and assets (package lib/chains) are immutable snapshots loaded from a file or the backend API, looked up by
id, alias or prefix with the first match in list order winning.

Display helpers live in lib/format (numbers, relative times, ellipsis and decoders that fall back to their input) and
lib/graph (the comet animation state of graph edges, kept in a side table).

The microservices can also be monitored via a Prometheus API by setting the flag "-m" at startup.
*/
package axelarscan
