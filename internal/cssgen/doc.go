// Package cssgen 将像素画工程转换为 CSS。
//
// 渲染基于 box-shadow 技巧：一个绝对定位的元素，通过一长串 box-shadow
// 在固定位置画出若干个 cellSize 大小的方块，从而不需要为每个像素创建 DOM 节点。
// 动画通过 @keyframes 在不同的百分比区间切换 box-shadow 实现。
//
// 包内的函数都是纯函数：不修改输入，不持有状态，可以并发调用，
// 相同输入总是得到逐字节相同的输出。
package cssgen
