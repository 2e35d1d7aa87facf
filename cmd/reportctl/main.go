// Command reportctl genera el overview de reportes desde la terminal, a partir de
// un volcado JSON del backend o iniciando sesión contra el backend en vivo.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
