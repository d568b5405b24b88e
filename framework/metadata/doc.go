// Package metadata stores the facts decorators attach to targets.
//
// Every target owns a Table. A Table is addressed by (Key, property) and each
// entry is a Record mapping a parameter index, or ClassLevel, to the arguments
// the decorator was called with:
//
//	table.Set("inject", "", metadata.Record{0: {"db"}})  // constructor param #0
//	table.Set("start", "Open", metadata.Record{metadata.ClassLevel: nil})
//
// Targets form a chain through Base(). Method-level reads walk that chain so a
// derived target sees the hooks its base declared, and ListAllMethods orders
// names base-first:
//
//	metadata.ListDecoratorMethods(startKey, cls) // ["Open", "Warmup"]
package metadata
