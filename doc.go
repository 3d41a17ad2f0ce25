// Package certmail renders participation certificates from a PDF template
// and emails them, tracking delivery in a spreadsheet ledger.
//
// # Quick Start
//
// Load the template and font once, then wire a renderer, a mailer and a
// record source into a processor:
//
//	tpl, err := certmail.LoadTemplate("Certificate.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	font, err := certmail.LoadFont("Playfair", "fonts/PlayfairDisplay-Regular.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	renderer, err := certmail.NewRenderer(tpl, font, layout, store)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mailer := certmail.NewMailer(transport, body, "events@example.com", "IT Department")
//
//	report, err := certmail.NewProcessor(ledger, renderer, mailer).Process(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sent, failed, skipped := report.Counts()
//
// # Processing
//
// Records are processed one at a time in source order:
//
//  1. Records whose status starts with ✅ are skipped.
//  2. Records missing a name, event or email are marked ❌ FAILED (missing data).
//  3. The status is set to ⏳ PENDING before any side effect.
//  4. The certificate is rendered and stored, then emailed once.
//  5. The status is set to ✅ SENT, or ❌ FAILED with the failing step.
//
// A failure in one record never stops the run. Re-running over the same
// ledger only retries records that are not Sent.
//
// # Layout
//
// Text is fitted into boxes with Fit. The font size starts at the box's
// maximum and shrinks in one point steps until the text fits its width,
// down to the box's minimum. Text is centered horizontally, and vertically
// when the box has a height.
//
// # Backends
//
// The record source, artifact store and mail transport are interfaces.
// Implementations for Google Sheets and CSV ledgers, local and S3 storage,
// and SMTP and Resend delivery live in the internal packages used by the
// certmail command.
package certmail
