package logs

import "github.com/sirupsen/logrus"

// Fields builds the action + path pair shared by every cache log line.
func Fields(action, path string) logrus.Fields {
	return logrus.Fields{
		"action": action,
		"path":   path,
	}
}

// KeyFields adds the cache key to the base fields.
func KeyFields(action, path, key string) logrus.Fields {
	fields := Fields(action, path)
	fields["key"] = key
	return fields
}
