// Package bikeval estimates used motorcycle prices in-process.
//
// A Client loads a listings catalog and a price model once, then answers
// model lookups, selection defaults, valuations and report exports without
// running the HTTP service.
//
//	client, err := bikeval.New(ctx,
//	    bikeval.WithCatalog("data/Used_Bikes.csv"),
//	    bikeval.WithModel("data/bike_model.json"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	sel, _ := client.Resolve("Royal Enfield Classic 350")
//	v, err := client.Valuate(ctx, bikeval.Request{
//	    Name:      "Royal Enfield Classic 350",
//	    KmsDriven: 12000,
//	    Year:      2020,
//	    Power:     sel.DefaultPower,
//	})
//
// Valuations can be exported as PDF or XLSX:
//
//	rep, _ := client.Export(ctx, bikeval.FormatXLSX, req)
//	_ = os.WriteFile(rep.Filename, rep.Data, 0o644)
package bikeval
