// Package export writes the summary of a load run to files other tools
// read: Prometheus text exposition for the node_exporter textfile collector,
// JUnit XML for CI systems, or the JSON document the reporter prints.
package export
