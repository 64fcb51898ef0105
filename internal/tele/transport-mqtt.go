package tele

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/wificlock/clockd/helpers"
	"github.com/wificlock/clockd/log2"
	tele_config "github.com/wificlock/clockd/tele/config"
)

const (
	topicSuffixConnect = "c"
	payloadOnline      = "1"
	payloadOffline     = "0"
	disconnectQuiesce  = 250 // ms
)

type transportMqtt struct {
	log    *log2.Log
	onLink func(bool)
	m      mqtt.Client
	mopt   *mqtt.ClientOptions
	alive  *alive.Alive

	topicPrefix  string
	topicConnect string
}

func (self *transportMqtt) Init(ctx context.Context, log *log2.Log, teleConfig tele_config.Config, onLink func(bool)) error {
	self.log = log
	self.onLink = onLink
	mqtt.ERROR = log
	mqtt.CRITICAL = log
	mqtt.WARN = log
	if teleConfig.MqttLogDebug {
		mqtt.DEBUG = log
	}

	if teleConfig.Broker == "" {
		return errors.NotValidf("tele.broker empty")
	}
	clientId := teleConfig.ClientId
	if clientId == "" {
		return errors.NotValidf("tele.client_id empty")
	}
	self.topicPrefix = clientId // coincidence
	self.topicConnect = fmt.Sprintf("%s/%s", self.topicPrefix, topicSuffixConnect)
	keepAlive := helpers.IntSecondDefault(teleConfig.KeepaliveSec, 60*time.Second)

	self.mopt = mqtt.NewClientOptions().
		AddBroker(teleConfig.Broker).
		SetWill(self.topicConnect, payloadOffline, 1, true).
		SetCleanSession(true).
		SetClientID(clientId).
		SetKeepAlive(keepAlive).
		SetPingTimeout(keepAlive / 2).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(keepAlive).
		SetOnConnectHandler(self.onConnectHandler).
		SetConnectionLostHandler(self.connectLostHandler)
	if teleConfig.Password != "" {
		self.mopt.SetUsername(clientId).SetPassword(teleConfig.Password)
	}
	self.m = mqtt.NewClient(self.mopt)
	self.alive = alive.NewAlive()

	// auto reconnect only works after first successful connect
	go self.connectLoop(keepAlive)
	return nil
}

func (self *transportMqtt) connectLoop(max time.Duration) {
	backoff := helpers.Backoff{Min: time.Second, Max: max, K: 2}
	stopch := self.alive.StopChan()
	for self.alive.IsRunning() {
		token := self.m.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			return
		}
		self.log.Errorf("mqtt connect broker=%v err=%v", self.mopt.Servers, err)
		select {
		case <-time.After(backoff.DelayAfter(false)):
		case <-stopch:
			return
		}
	}
}

func (self *transportMqtt) Close() {
	self.alive.Stop()
	if self.m.IsConnected() {
		self.m.Publish(self.topicConnect, 1, true, payloadOffline).Wait()
	}
	self.m.Disconnect(disconnectQuiesce)
	self.log.Infof("mqtt disconnected")
}

func (self *transportMqtt) Publish(topicSuffix string, retained bool, payload []byte) bool {
	topic := fmt.Sprintf("%s/%s", self.topicPrefix, topicSuffix)
	if !self.m.IsConnected() {
		self.log.Debugf("mqtt offline, drop topic=%s", topic)
		return false
	}
	self.m.Publish(topic, 1, retained, payload)
	return true
}

func (self *transportMqtt) connectLostHandler(c mqtt.Client, err error) {
	self.log.Infof("mqtt connection lost err=%v", err)
	self.onLink(false)
}

func (self *transportMqtt) onConnectHandler(c mqtt.Client) {
	self.log.Infof("mqtt connect")
	c.Publish(self.topicConnect, 1, true, payloadOnline)
	self.onLink(true)
}
