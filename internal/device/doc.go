// Package device manages the devices installed in rooms and the sensors and
// actuators they carry.
//
// A Device lives in one room and is either active or deactivated;
// deactivation is one-way. Each Sensor belongs to one device and measures
// one functionality (TemperatureCelsius, PowerAverage, ...). The
// functionality decides which reading store holds the sensor's readings, so
// the set of accepted sensor functionalities comes from the same routing
// table the measurement package uses.
//
// The Registry ties the three repositories together and answers the
// directory questions the measurement engine asks: which sensors does a
// device own, which sensors share a functionality, which device owns a
// sensor.
//
// # Thread Safety
//
// Repositories and the Registry are safe for concurrent use.
//
// # Usage
//
//	reg := device.NewRegistry(devices, sensors, actuators, rooms, catalog, actuatorNames)
//	reg.SetLogger(logger)
//	sensors, err := reg.SensorsOfDevice(ctx, "HeatPump")
package device
