// Package mqtt provides the broker connection used by the Gray Motion
// MQTT bridge.
//
// The client wraps paho.mqtt.golang with auto-reconnect, subscription
// restoration, a retained online/offline status on graymotion/system/status
// (with a Last Will for unexpected disconnects) and panic-safe handlers.
//
//	client, err := mqtt.Connect(cfg.MQTT, logger)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllSequenceCommands(), 1,
//	    func(topic string, payload []byte) error {
//	        name := mqtt.LastSegment(topic)
//	        ...
//	    })
//
// Use TLS (cfg.Broker.TLS) whenever the broker is reachable beyond the
// rig itself.
package mqtt
