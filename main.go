package main

import (
	"context"
	"os"

	"github.com/cyverse-de/go-mod/otelutils"
	"github.com/sirupsen/logrus"

	"github.com/cyverse-de/identitystore-admin/logging"
)

var log = logging.Log.WithFields(logrus.Fields{"package": "main"})

const serviceName = "identitystore-admin"

const otelName = "github.com/cyverse-de/identitystore-admin"

func main() {
	var tracerCtx, cancel = context.WithCancel(context.Background())
	defer cancel()
	shutdown := otelutils.TracerProviderFromEnv(tracerCtx, serviceName, func(e error) { log.Fatal(e) })

	err := newRootCmd(defaultDependencies(os.Stdout)).ExecuteContext(tracerCtx)

	shutdown()
	if err != nil {
		log.Fatal(err)
	}
}
