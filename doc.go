// Package proligent builds Proligent Datawarehouse XML payloads.
//
// A payload describes one manufacturing test record: a process run made of
// operation runs, sequence runs and step runs carrying measures, plus the
// product unit under test. Entities are assembled in memory, then Build
// turns them into an element tree that Marshal serializes:
//
//	op, err := proligent.NewOperationRun(proligent.OperationRunOptions{Station: "Station/A"})
//	...
//	dw := proligent.NewDataWarehouse(proligent.DataWarehouseOptions{})
//	dw.SetProcessRun(process)
//	data, err := proligent.Marshal(dw, proligent.BuildOptions{})
//
// Timestamps are written with a numeric UTC offset in BuildOptions.Location.
// The validator package checks the result against the Datawarehouse schema.
package proligent
