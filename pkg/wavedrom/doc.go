// Package wavedrom rewrites ```wavedrom fenced code blocks into script
// elements that the WaveDrom browser library renders at view time.
//
// A block such as
//
//	```wavedrom
//	{signal: [{name: 'clk', wave: 'p..'}]}
//	```
//
// becomes
//
//	<script type="WaveDrom" id="wavedrom-…">{signal: [{name: 'clk', wave: 'p..'}]}</script>
//
// The diagram source is copied byte for byte; it is neither validated nor
// escaped. Fences are located with goldmark using the same extensions mdbook
// enables, so a ```wavedrom line inside another code block, an HTML block or
// an indented code block is left alone. Blocks without a closing fence are
// left untouched.
//
// [Preprocessor] wires [Rewrite] into the mdbook preprocessor protocol
// implemented by package preprocess.
package wavedrom
