package main

import (
	"os"

	runtimelog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/manager/signals"

	"github.com/michelfeldheim/certificate-creator/cmd/certificate-creator/app"
)

func main() {
	ctx := signals.SetupSignalHandler()
	if err := app.NewCertificateCreatorCommand().ExecuteContext(ctx); err != nil {
		runtimelog.Log.Error(err, "Error executing certificate-creator")
		os.Exit(1)
	}
}
