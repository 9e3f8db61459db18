// Package schema embeds the Proligent Datawarehouse XML Schema fragments.
package schema

import "embed"

// Namespace is the target namespace of the Datawarehouse schema.
const Namespace = "http://www.averna.com/products/proligent/analytics/DIT/6.85"

// Dir is the location of the schema fragments inside FS.
const Dir = "xsd"

// FS holds every schema fragment under Dir.
//
//go:embed xsd/*.xsd
var FS embed.FS
