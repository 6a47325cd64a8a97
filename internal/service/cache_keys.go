package service

import "fmt"

const cacheKeyMeses = "entradas:meses"

func cacheKeyReporte(periodo string) string { return "reporte:" + periodo }

func periodoDe(anio, mes int) string { return fmt.Sprintf("%04d-%02d", anio, mes) }

const fechaLayout = "2006-01-02"
